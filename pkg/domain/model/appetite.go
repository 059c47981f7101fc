package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/domain/types"
)

// Score range of the 5x5 matrix
const (
	MinRiskScore = 1
	MaxRiskScore = 25
)

// Band labels a score range for appetite visualization
type Band struct {
	Label       string
	Color       string
	MinScore    int
	MaxScore    int
	Description string
}

// Contains reports whether score lies in [MinScore, MaxScore]
func (b *Band) Contains(score int) bool {
	return b.MinScore <= score && score <= b.MaxScore
}

// Validate checks the band label and range. Overlaps between bands are not checked here.
func (b *Band) Validate() error {
	if b.Label == "" {
		return goerr.Wrap(ErrMissingRequired, "band label is required")
	}
	if b.MinScore > b.MaxScore {
		return goerr.Wrap(types.ErrInvalidArgument, "band min_score must not exceed max_score",
			goerr.V(BandLabelKey, b.Label), goerr.V("min_score", b.MinScore), goerr.V("max_score", b.MaxScore))
	}
	if b.MinScore < MinRiskScore || b.MaxScore > MaxRiskScore {
		return goerr.Wrap(types.ErrInvalidArgument, "band range must be within 1..25",
			goerr.V(BandLabelKey, b.Label), goerr.V("min_score", b.MinScore), goerr.V("max_score", b.MaxScore))
	}
	return nil
}

// AppetiteID is a UUID-based identifier for RiskAppetite
type AppetiteID string

// NewAppetiteID generates a new UUID v4 AppetiteID
func NewAppetiteID() AppetiteID {
	return AppetiteID(uuid.New().String())
}

// RiskAppetite is an ordered set of bands plus the highest residual score the
// organization is willing to accept. Band order is authored by users and is meaningful.
type RiskAppetite struct {
	ID          AppetiteID
	Name        string
	Bands       []Band
	Tolerance   int
	Description string
	UpdatedAt   time.Time
}

// Validate checks the name, every band, and the tolerance range
func (a *RiskAppetite) Validate() error {
	if a.Name == "" {
		return goerr.Wrap(ErrMissingRequired, "appetite name is required", goerr.V(AppetiteIDKey, a.ID))
	}
	for i := range a.Bands {
		if err := a.Bands[i].Validate(); err != nil {
			return goerr.Wrap(err, "invalid band", goerr.V(AppetiteIDKey, a.ID), goerr.V("band_index", i))
		}
	}
	if a.Tolerance != 0 && (a.Tolerance < MinRiskScore || a.Tolerance > MaxRiskScore) {
		return goerr.Wrap(types.ErrInvalidArgument, "tolerance must be within 1..25",
			goerr.V(AppetiteIDKey, a.ID), goerr.V("tolerance", a.Tolerance))
	}
	return nil
}

// OverlappingBands returns pairs of band indexes whose ranges intersect
func (a *RiskAppetite) OverlappingBands() [][2]int {
	var pairs [][2]int
	for i := 0; i < len(a.Bands); i++ {
		for j := i + 1; j < len(a.Bands); j++ {
			if a.Bands[i].MinScore <= a.Bands[j].MaxScore && a.Bands[j].MinScore <= a.Bands[i].MaxScore {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs
}

// Copy returns a deep copy of the appetite
func (a *RiskAppetite) Copy() *RiskAppetite {
	copied := *a
	if a.Bands != nil {
		copied.Bands = make([]Band, len(a.Bands))
		copy(copied.Bands, a.Bands)
	}
	return &copied
}
