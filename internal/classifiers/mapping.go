package classifiers

import (
	"database/sql"

	"github.com/JaimeStill/lyceum/pkg/query"
	"github.com/JaimeStill/lyceum/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "classifiers", "c").
	Project("id", "ID").
	Project("project_id", "ProjectID").
	Project("class_id", "ClassID").
	Project("project_type", "ProjectType").
	Project("classifier_id", "ClassifierID").
	Project("credentials_id", "CredentialsID").
	Project("name", "Name").
	Project("language", "Language").
	Project("url", "URL").
	Project("created", "Created").
	Project("expiry", "Expiry").
	Project("status", "Status").
	Project("updated", "Updated")

var defaultSort = []query.SortField{
	{Field: "Updated", Descending: true},
	{Field: "Created", Descending: true},
}

const returning = `id, project_id, class_id, project_type, classifier_id, credentials_id, name, language, url, created, expiry, status, updated`

func scanRecord(s repository.Scanner) (Record, error) {
	var (
		r      Record
		expiry sql.NullTime
	)

	err := s.Scan(
		&r.ID,
		&r.ProjectID,
		&r.ClassID,
		&r.ProjectType,
		&r.ClassifierID,
		&r.CredentialsID,
		&r.Name,
		&r.Language,
		&r.URL,
		&r.Created,
		&expiry,
		&r.Status,
		&r.Updated,
	)
	if err != nil {
		return r, err
	}

	if expiry.Valid {
		r.Expiry = &expiry.Time
	}

	return r, nil
}
