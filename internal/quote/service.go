package quote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rafaeljc/cpq/internal/catalog"
	"github.com/rafaeljc/cpq/internal/configurator"
	"github.com/rafaeljc/cpq/internal/logger"
	"github.com/rafaeljc/cpq/internal/observability"
	"github.com/rafaeljc/cpq/internal/validation"
)

// Pricer prices a configuration. *configurator.Service satisfies it.
type Pricer interface {
	GetServerConfiguration(selection map[string]string) (*configurator.ServerConfiguration, error)
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string
	Message string
	Value   string
}

// RequestError lists every invalid field of a Request.
// errors.Is(err, ErrInvalidRequest) holds for it.
type RequestError struct {
	Fields []FieldError
}

func (e *RequestError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return ErrInvalidRequest.Error() + ": " + strings.Join(parts, "; ")
}

func (e *RequestError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// Service creates and reads quotes.
type Service struct {
	pricer   Pricer
	repo     Repository
	validate *validator.Validate
	logger   *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewService creates a Service. pricer and repo are mandatory.
func NewService(pricer Pricer, repo Repository, log *slog.Logger) *Service {
	validation.AssertPresent(pricer, "pricer")
	validation.AssertPresent(repo, "quote repository")
	log = logger.OrDefault(log)

	return &Service{
		pricer:   pricer,
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.NewString() },
	}
}

// CreateQuote validates req, prices its configuration and appends the quote.
//
// Field problems yield a *RequestError; a configuration rejected by the
// configurator is wrapped in ErrInvalidConfiguration. Both are client errors.
func (s *Service) CreateQuote(ctx context.Context, req Request) (*Response, error) {
	log := logger.FromContextOr(ctx, s.logger)

	if err := s.validateRequest(req); err != nil {
		observability.QuotesTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	priced, err := s.pricer.GetServerConfiguration(req.Configuration)
	if err != nil {
		var verr *configurator.ValidationError
		if errors.As(err, &verr) || errors.Is(err, catalog.ErrUnknownReference) {
			observability.QuotesTotal.WithLabelValues("invalid").Inc()
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
		}
		observability.QuotesTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to price configuration: %w", err)
	}

	q := &Quote{
		ID:            s.newID(),
		Configuration: req.Configuration,
		ContactName:   strings.TrimSpace(req.ContactName),
		ContactEmail:  strings.TrimSpace(req.ContactEmail),
		Company:       req.Company,
		TotalPrice:    priced.TotalPrice,
		TotalDiscount: priced.TotalDiscount,
		CreatedAt:     s.now(),
	}

	if err := s.repo.Append(ctx, q); err != nil {
		observability.QuotesTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	observability.QuotesTotal.WithLabelValues("created").Inc()
	log.Info("quote created",
		slog.String("quote_id", q.ID),
		slog.String("total_price", q.TotalPrice.String()),
	)

	return &Response{ID: q.ID, TotalPrice: q.TotalPrice, CreatedAt: q.CreatedAt}, nil
}

// GetQuote returns the quote with id or ErrQuoteNotFound.
func (s *Service) GetQuote(ctx context.Context, id string) (*Quote, error) {
	return s.repo.Get(ctx, id)
}

// ListQuotes returns every quote in append order.
func (s *Service) ListQuotes(ctx context.Context) ([]Quote, error) {
	return s.repo.List(ctx)
}

func (s *Service) validateRequest(req Request) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   jsonFieldNames[fe.Field()],
			Message: fieldMessage(fe),
			Value:   fmt.Sprint(fe.Value()),
		})
	}
	return &RequestError{Fields: fields}
}

var jsonFieldNames = map[string]string{
	"Configuration": "configuration",
	"ContactName":   "contact_name",
	"ContactEmail":  "contact_email",
	"Company":       "company",
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "value is not a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed on " + fe.Tag()
	}
}
