package dashboard

import (
	"fmt"
	"time"

	"github.com/weiihann/ecoquest-analytics/internal/poller"
	"github.com/weiihann/ecoquest-analytics/pkg/analytics"
)

type ViewState string

const (
	StateLoading ViewState = "loading"
	StateError   ViewState = "error"
	StateReady   ViewState = "ready"
)

// Card is one participation counter.
type Card struct {
	Label   string `json:"label"`
	Value   int64  `json:"value"`
	Display string `json:"display"`
}

// Highlight is one of the top materials with its impact estimate.
type Highlight struct {
	Rank               int                       `json:"rank"`
	Name               string                    `json:"name"`
	Collected          int64                     `json:"collected"`
	CollectedDisplay   string                    `json:"collected_display"`
	Impact             *analytics.ImpactEstimate `json:"impact,omitempty"`
	PilotTarget        int64                     `json:"pilot_target"`
	PilotTargetDisplay string                    `json:"pilot_target_display"`
}

// View is everything the dashboard renders for one poller state.
type View struct {
	State            ViewState                `json:"state"`
	Error            string                   `json:"error,omitempty"`
	LastError        string                   `json:"last_error,omitempty"`
	LastUpdated      *time.Time               `json:"last_updated,omitempty"`
	SecondsAgo       int64                    `json:"seconds_ago"`
	LastUpdatedLabel string                   `json:"last_updated_label,omitempty"`
	Cards            []Card                   `json:"cards"`
	CollectedTotal   int64                    `json:"collected_total"`
	CollectedDisplay string                   `json:"collected_display"`
	Progress         analytics.Progress       `json:"progress"`
	Materials        []analytics.MaterialStat `json:"materials"`
	Highlights       []Highlight              `json:"highlights"`
	Summary          string                   `json:"summary"`
}

type Options struct {
	Goal int64
	TopN int
}

func DefaultOptions() Options {
	return Options{Goal: analytics.PilotGoal, TopN: analytics.DefaultTopN}
}

// Build derives the dashboard view. Without a snapshot the view is loading or
// error; once any snapshot exists it is always ready, and a later failure is
// only reported through LastError.
func Build(st poller.State, opts Options) View {
	if opts.Goal == 0 {
		opts.Goal = analytics.PilotGoal
	}
	if opts.TopN == 0 {
		opts.TopN = analytics.DefaultTopN
	}

	switch StateOf(st) {
	case StateLoading:
		return View{State: StateLoading, Cards: []Card{}, Materials: []analytics.MaterialStat{}, Highlights: []Highlight{}}
	case StateError:
		return View{State: StateError, Error: st.LastError, Cards: []Card{}, Materials: []analytics.MaterialStat{}, Highlights: []Highlight{}}
	}

	snap := st.Snapshot
	collected := snap.Recyclables.Overall.CollectedTotal
	sorted := analytics.SortMaterials(analytics.NormalizeMaterials(snap))

	v := View{
		State:     StateReady,
		LastError: st.LastError,
		Cards: []Card{
			newCard("Total Users", snap.Totals.TotalUsers),
			newCard("Total Quests", snap.Totals.TotalQuests),
			newCard("Total Rewards", snap.Totals.TotalRewards),
		},
		CollectedTotal:   collected,
		CollectedDisplay: analytics.FormatNumber(collected) + " pcs",
		Progress:         analytics.ComputeProgress(collected, opts.Goal),
		Materials:        sorted,
		Highlights:       highlights(analytics.TopN(sorted, opts.TopN)),
		Summary:          fmt.Sprintf("Together, our community has collected %s recyclable items", analytics.FormatNumber(collected)),
	}

	if !st.LastUpdated.IsZero() {
		updated := st.LastUpdated
		v.LastUpdated = &updated
		v.SecondsAgo = st.SecondsAgo
		v.LastUpdatedLabel = LastUpdatedLabel(st.SecondsAgo)
	}

	return v
}

// StateOf classifies a poller state for display.
func StateOf(st poller.State) ViewState {
	switch {
	case st.Snapshot != nil:
		return StateReady
	case st.Loading || st.LastError == "":
		return StateLoading
	default:
		return StateError
	}
}

// LastUpdatedLabel renders the elapsed time: "N seconds ago" below a minute,
// whole minutes after that.
func LastUpdatedLabel(secondsAgo int64) string {
	if secondsAgo < 60 {
		return fmt.Sprintf("%d seconds ago", secondsAgo)
	}
	minutes := secondsAgo / 60
	if minutes > 1 {
		return fmt.Sprintf("%d minutes ago", minutes)
	}
	return fmt.Sprintf("%d minute ago", minutes)
}

func newCard(label string, value int64) Card {
	return Card{Label: label, Value: value, Display: analytics.FormatNumber(value)}
}

func highlights(top []analytics.MaterialStat) []Highlight {
	out := make([]Highlight, 0, len(top))
	for i, m := range top {
		target := analytics.PilotTarget(m.Name)
		out = append(out, Highlight{
			Rank:               i + 1,
			Name:               m.Name,
			Collected:          m.Collected,
			CollectedDisplay:   analytics.FormatNumber(m.Collected) + " pcs",
			Impact:             analytics.ComputeImpact(m.Name, m.Collected),
			PilotTarget:        target,
			PilotTargetDisplay: analytics.FormatNumber(target) + " pcs",
		})
	}
	return out
}
