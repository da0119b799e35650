package cli

import (
	"strings"
	"time"

	"github.com/Conte777/mediaflow/internal/domain"
	"github.com/Conte777/mediaflow/internal/domain/download/entities"
	"github.com/Conte777/mediaflow/internal/domain/media"
	"github.com/Conte777/mediaflow/internal/domain/placement"
	pkgerrors "github.com/Conte777/mediaflow/pkg/errors"
)

const dateLayout = "2006-01-02"

// downloadOptions are the raw download flags
type downloadOptions struct {
	types        []string
	start        string
	end          string
	limit        int
	limitSet     bool
	dir          string
	grouping     string
	skipExisting bool
	skipSet      bool
}

// jobConfig builds a validated job configuration on top of defaults
func (o downloadOptions) jobConfig(target domain.ConversationTarget, defaults entities.JobConfig) (entities.JobConfig, error) {
	cfg := defaults
	cfg.Target = target

	filters, err := parseKinds(o.types)
	if err != nil {
		return entities.JobConfig{}, err
	}
	cfg.Filters = filters

	if cfg.Constraints.Start, err = parseDate(o.start, false); err != nil {
		return entities.JobConfig{}, pkgerrors.NewValidationErrorf("invalid --start: %v", err)
	}
	if cfg.Constraints.End, err = parseDate(o.end, true); err != nil {
		return entities.JobConfig{}, pkgerrors.NewValidationErrorf("invalid --end: %v", err)
	}

	if o.limitSet {
		limit := o.limit
		cfg.Constraints.Limit = &limit
	}
	if o.dir != "" {
		cfg.Root = o.dir
	}
	if o.grouping != "" {
		g, err := placement.ParseGrouping(o.grouping)
		if err != nil {
			return entities.JobConfig{}, pkgerrors.NewValidationError(err.Error())
		}
		cfg.Grouping = g
	}
	if o.skipSet {
		cfg.SkipExisting = o.skipExisting
	}

	if err := cfg.Validate(); err != nil {
		return entities.JobConfig{}, err
	}
	return cfg, nil
}

// parseKinds accepts kind names and "all"
func parseKinds(names []string) (media.FilterSet, error) {
	filters := media.FilterSet{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if strings.EqualFold(name, "all") {
			return media.NewFilterSet(media.AllKinds...), nil
		}

		k, err := media.ParseKind(name)
		if err != nil {
			return nil, pkgerrors.NewValidationError(err.Error())
		}
		filters[k] = true
	}
	return filters, nil
}

// parseDate parses a local calendar date or an RFC 3339 timestamp. A date
// used as an upper bound covers the whole day.
func parseDate(s string, endOfDay bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}

	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}
