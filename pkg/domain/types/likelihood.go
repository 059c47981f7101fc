package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Likelihood is the probability axis of the risk matrix. Ordinals are fixed to 1..5.
type Likelihood string

const (
	LikelihoodRare          Likelihood = "rare"
	LikelihoodUnlikely      Likelihood = "unlikely"
	LikelihoodPossible      Likelihood = "possible"
	LikelihoodLikely        Likelihood = "likely"
	LikelihoodAlmostCertain Likelihood = "almost_certain"
)

var likelihoodOrdinals = map[Likelihood]int{
	LikelihoodRare:          1,
	LikelihoodUnlikely:      2,
	LikelihoodPossible:      3,
	LikelihoodLikely:        4,
	LikelihoodAlmostCertain: 5,
}

// AllLikelihoods returns all likelihoods in ascending ordinal order
func AllLikelihoods() []Likelihood {
	return []Likelihood{
		LikelihoodRare,
		LikelihoodUnlikely,
		LikelihoodPossible,
		LikelihoodLikely,
		LikelihoodAlmostCertain,
	}
}

// Ordinal returns 1..5, or 0 for an unknown likelihood
func (l Likelihood) Ordinal() int {
	return likelihoodOrdinals[l]
}

// IsValid checks if the likelihood is one of the known values
func (l Likelihood) IsValid() bool {
	_, ok := likelihoodOrdinals[l]
	return ok
}

// Validate returns ErrInvalidArgument for unknown likelihoods
func (l Likelihood) Validate() error {
	if !l.IsValid() {
		return goerr.Wrap(ErrInvalidArgument, "unknown likelihood", goerr.V(ValueKey, string(l)))
	}
	return nil
}

// String returns the string representation of the likelihood
func (l Likelihood) String() string {
	return string(l)
}

// ParseLikelihood parses a likelihood case-insensitively. "almost-certain" and
// "almost certain" are accepted for almost_certain.
func ParseLikelihood(s string) (Likelihood, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)

	likelihood := Likelihood(normalized)
	if err := likelihood.Validate(); err != nil {
		return "", goerr.Wrap(err, "failed to parse likelihood", goerr.V("input", s))
	}
	return likelihood, nil
}

// LikelihoodFromOrdinal converts 1..5 back to a Likelihood
func LikelihoodFromOrdinal(ordinal int) (Likelihood, error) {
	all := AllLikelihoods()
	if ordinal < 1 || ordinal > len(all) {
		return "", goerr.Wrap(ErrInvalidArgument, "likelihood ordinal out of range", goerr.V(OrdinalKey, ordinal))
	}
	return all[ordinal-1], nil
}
