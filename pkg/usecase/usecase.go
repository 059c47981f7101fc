package usecase

import (
	"github.com/secmon-lab/cottus/pkg/domain/interfaces"
	"github.com/secmon-lab/cottus/pkg/service/scoring"
)

// defaultAssessConcurrency bounds parallel repository reads in AssessAll
const defaultAssessConcurrency = 8

type UseCases struct {
	repo              interfaces.Repository
	engine            *scoring.Engine
	blobStore         interfaces.BlobStore
	notifier          interfaces.Notifier
	assistant         interfaces.MappingAssistant
	assessConcurrency int

	Scoring  *ScoringUseCase
	Risk     *RiskUseCase
	Appetite *AppetiteUseCase
	Import   *ImportUseCase
}

type Option func(*UseCases)

// WithScoringEngine replaces the default scoring constants
func WithScoringEngine(engine *scoring.Engine) Option {
	return func(uc *UseCases) {
		uc.engine = engine
	}
}

// WithBlobStore sets where uploaded framework files are kept
func WithBlobStore(store interfaces.BlobStore) Option {
	return func(uc *UseCases) {
		uc.blobStore = store
	}
}

// WithNotifier enables notifications
func WithNotifier(notifier interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = notifier
	}
}

// WithMappingAssistant enables LLM assisted column mapping in import previews
func WithMappingAssistant(assistant interfaces.MappingAssistant) Option {
	return func(uc *UseCases) {
		uc.assistant = assistant
	}
}

// WithAssessConcurrency sets how many risks AssessAll evaluates in parallel
func WithAssessConcurrency(n int) Option {
	return func(uc *UseCases) {
		uc.assessConcurrency = n
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:              repo,
		engine:            scoring.Default(),
		assessConcurrency: defaultAssessConcurrency,
	}

	for _, opt := range opts {
		opt(uc)
	}
	if uc.assessConcurrency < 1 {
		uc.assessConcurrency = 1
	}

	uc.Scoring = NewScoringUseCase(repo, uc.engine)
	uc.Risk = NewRiskUseCase(repo, uc.engine, uc.assessConcurrency)
	uc.Appetite = NewAppetiteUseCase(repo)
	uc.Import = NewImportUseCase(repo, uc.blobStore, uc.notifier, uc.assistant)

	return uc
}

// Notifier returns the configured notifier, or nil
func (uc *UseCases) Notifier() interfaces.Notifier {
	return uc.notifier
}
