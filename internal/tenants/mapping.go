package tenants

import (
	"github.com/JaimeStill/lyceum/pkg/query"
	"github.com/JaimeStill/lyceum/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "tenants", "t").
	Project("id", "ID").
	Project("max_text_models", "MaxTextModels").
	Project("max_image_models", "MaxImageModels").
	Project("is_managed", "IsManaged").
	Project("updated_at", "UpdatedAt")

func scanTenant(s repository.Scanner) (Tenant, error) {
	var t Tenant
	err := s.Scan(&t.ID, &t.MaxTextModels, &t.MaxImageModels, &t.IsManaged, &t.UpdatedAt)
	return t, err
}
