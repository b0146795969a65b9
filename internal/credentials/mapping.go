package credentials

import (
	"github.com/JaimeStill/lyceum/pkg/query"
	"github.com/JaimeStill/lyceum/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "credentials", "k").
	Project("id", "ID").
	Project("class_id", "ClassID").
	Project("service_type", "ServiceType").
	Project("url", "URL").
	Project("username", "Username").
	Project("password", "Password").
	Project("created_at", "CreatedAt")

var storedOrder = []query.SortField{
	{Field: "CreatedAt"},
	{Field: "ID"},
}

const returning = `id, class_id, service_type, url, username, password, created_at`

func scanCredentials(s repository.Scanner) (Credentials, error) {
	var c Credentials
	err := s.Scan(
		&c.ID,
		&c.ClassID,
		&c.ServiceType,
		&c.URL,
		&c.Username,
		&c.Password,
		&c.CreatedAt,
	)
	return c, err
}
