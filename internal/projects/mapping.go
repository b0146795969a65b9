package projects

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/JaimeStill/lyceum/pkg/query"
	"github.com/JaimeStill/lyceum/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "projects", "p").
	Project("id", "ID").
	Project("class_id", "ClassID").
	Project("user_id", "UserID").
	Project("type", "Type").
	Project("name", "Name").
	Project("language", "Language").
	Project("fields", "Fields").
	Project("model_status", "ModelStatus").
	Project("model_created", "ModelCreated").
	Project("model_updated", "ModelUpdated").
	Project("created_at", "CreatedAt")

const returning = `id, class_id, user_id, type, name, language, fields, model_status, model_created, model_updated, created_at`

func scanProject(s repository.Scanner) (Project, error) {
	var (
		p       Project
		fields  []byte
		status  sql.NullString
		created sql.NullTime
		updated sql.NullTime
	)

	err := s.Scan(
		&p.ID,
		&p.ClassID,
		&p.UserID,
		&p.Type,
		&p.Name,
		&p.Language,
		&fields,
		&status,
		&created,
		&updated,
		&p.CreatedAt,
	)
	if err != nil {
		return p, err
	}

	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &p.Fields); err != nil {
			return p, fmt.Errorf("decode project fields: %w", err)
		}
	}

	if status.Valid {
		p.Model = &NumbersModel{Status: status.String, Created: created.Time, Updated: updated.Time}
	}

	return p, nil
}
