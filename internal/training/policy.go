package training

import (
	"github.com/JaimeStill/lyceum/internal/credentials"
	"github.com/JaimeStill/lyceum/internal/faults"
	"github.com/JaimeStill/lyceum/internal/projects"
)

// Usage is a class's model count for one project type against its quota.
// A Limit of zero is unlimited.
type Usage struct {
	Current int
	Limit   int
}

func (u Usage) exhausted() bool {
	return u.Limit > 0 && u.Current >= u.Limit
}

// Authorize decides whether p may train a new model given the configured
// accounts and the class's usage. It performs no I/O. Numbers projects are
// always permitted.
func Authorize(p *projects.Project, cands []credentials.Candidate, usage Usage) error {
	if p.Type == projects.Numbers {
		return nil
	}

	provider := providers[p.Type]

	if usage.exhausted() {
		return faults.Capacity(provider)
	}

	if len(cands) == 0 {
		return faults.Missing(string(p.Type))
	}

	if _, ok := credentials.Select(cands); !ok {
		return faults.Capacity(provider)
	}

	return nil
}
