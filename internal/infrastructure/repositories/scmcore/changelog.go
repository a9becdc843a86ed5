package scmcore

import (
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

// ParseDate tries each layout in turn.
func ParseDate(value string, layouts ...string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	logger.Debugf("Unparseable date %q", value)
	return time.Time{}, false
}

// BuildChangeLog wraps parsed change sets into the changelog payload, applying the date
// window and limit that the tool could not apply itself.
func BuildChangeLog(request *entities.CommandRequest, sets []entities.ChangeSet, merge bool) *entities.ChangeLogSet {
	params := request.Parameters
	start := params.ResolvedStartDate(time.Now())

	filtered := make([]entities.ChangeSet, 0, len(sets))
	for _, set := range sets {
		if start != nil && !set.Date.IsZero() && set.Date.Before(*start) {
			continue
		}
		if params.EndDate != nil && !set.Date.IsZero() && set.Date.After(*params.EndDate) {
			continue
		}
		filtered = append(filtered, set)
	}
	if merge {
		filtered = entities.MergeChangeSets(filtered)
	}
	if params.Limit > 0 && len(filtered) > params.Limit {
		filtered = filtered[:params.Limit]
	}

	return &entities.ChangeLogSet{
		StartDate:    start,
		EndDate:      params.EndDate,
		StartVersion: params.StartVersion,
		EndVersion:   params.EndVersion,
		ChangeSets:   filtered,
	}
}

// ChangeLogApply is the Apply half shared by changelog consumers.
func ChangeLogApply(request *entities.CommandRequest, sets *[]entities.ChangeSet, merge bool) func(*entities.ScmResult) {
	return func(result *entities.ScmResult) {
		result.ChangeLog = BuildChangeLog(request, *sets, merge)
	}
}
