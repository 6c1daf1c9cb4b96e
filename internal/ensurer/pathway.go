package ensurer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/odense-rpa/postmester-medcom/internal/apperr"
	"github.com/odense-rpa/postmester-medcom/internal/models"
)

// PathwayEnsurer enrolls the citizen in the rule's pathways
type PathwayEnsurer struct {
	backend  PathwayBackend
	reporter Reporter
	logger   *zap.Logger
}

// NewPathwayEnsurer creates the ensurer
func NewPathwayEnsurer(backend PathwayBackend, reporter Reporter, logger *zap.Logger) *PathwayEnsurer {
	return &PathwayEnsurer{backend: backend, reporter: reporter, logger: logger}
}

// ParsePathwayLine parses one line of a pathway field. Only the first "/"
// separates base from sub, so "A/B/C" is base "A" with sub "B/C". ok is
// false for blank lines.
func ParsePathwayLine(line string) (spec models.PathwaySpec, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return models.PathwaySpec{}, false, nil
	}

	base, sub, nested := strings.Cut(line, "/")
	spec.Base = strings.TrimSpace(base)
	if nested {
		spec.Sub = strings.TrimSpace(sub)
	}
	if spec.Base == "" {
		return models.PathwaySpec{}, false, apperr.Domainf("parse pathway", "pathway line %q has no base pathway", line)
	}
	return spec, true, nil
}

// Ensure creates every pathway line of rule.Pathway the citizen is not
// already enrolled in.
//
// Active pathways are fetched once per call and not refreshed between lines,
// so a name repeated on a later line is checked against the state before
// this call.
func (e *PathwayEnsurer) Ensure(ctx context.Context, citizen *models.Citizen, rule *models.Rule, msg *models.Message) error {
	if rule.Pathway == nil {
		return nil
	}

	active, err := e.backend.ActivePathways(ctx, citizen)
	if err != nil {
		return err
	}
	enrolled := make(map[string]struct{}, len(active))
	for _, p := range active {
		enrolled[p.Name] = struct{}{}
	}
	has := func(name string) bool {
		_, ok := enrolled[name]
		return ok
	}

	for _, line := range strings.Split(*rule.Pathway, "\n") {
		spec, ok, err := ParsePathwayLine(line)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		var action string
		if spec.Nested() {
			if has(spec.Base) && has(spec.Sub) {
				continue
			}
			action = fmt.Sprintf("Tilføjet grundforløb: %s og forløb: %s", spec.Base, spec.Sub)
		} else {
			if has(spec.Base) {
				continue
			}
			action = fmt.Sprintf("Tilføjet grundforløb: %s", spec.Base)
		}

		if err := e.backend.CreatePathway(ctx, citizen, spec); err != nil {
			return err
		}
		e.logger.Debug("Pathway created",
			zap.String("base", spec.Base),
			zap.String("sub", spec.Sub),
		)

		if err := e.reporter.Report(ctx, audit(citizen, msg, action)); err != nil {
			return err
		}
	}

	return nil
}
