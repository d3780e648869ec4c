package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"vacancyhub/common/telemetry"
	"vacancyhub/services/vacancies/internal/errors"
	"vacancyhub/services/vacancies/internal/messaging"
	"vacancyhub/services/vacancies/internal/models"
	"vacancyhub/services/vacancies/internal/query"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service interface {
	Ingest(ctx context.Context, keyword string) (int, error)
	ImportRecords(ctx context.Context, data []byte) (int, error)
	AddVacancies(ctx context.Context, vacancies []models.Vacancy) error
	Query(ctx context.Context, params query.Params) ([]models.Vacancy, error)
	DeleteVacancy(ctx context.Context, vacancy models.Vacancy) (int, error)
	ListAll(ctx context.Context) ([]models.Vacancy, error)
	Archive(ctx context.Context) (int, error)
}

// Handler serves the request/reply API. All subjects share one subscription,
// so NATS delivers requests one at a time and store access stays serialized.
type Handler struct {
	logger    *zap.Logger
	nc        *nats.Conn
	tracer    trace.Tracer
	service   Service
	publisher messaging.Publisher
	sub       *nats.Subscription
}

func NewHandler(logger *zap.Logger, nc *nats.Conn, tracer trace.Tracer, service Service, publisher messaging.Publisher) *Handler {
	return &Handler{
		logger:    logger,
		nc:        nc,
		tracer:    tracer,
		service:   service,
		publisher: publisher,
	}
}

func (h *Handler) RegisterSubscriptions(lc fx.Lifecycle) error {
	sub, err := h.nc.QueueSubscribe(APISubjects, QueueGroup, h.handleRequest)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", APISubjects, err)
	}

	h.sub = sub
	h.logger.Info("Registered NATS subscriptions", zap.String("subject", APISubjects))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return h.sub.Drain()
		},
	})

	return nil
}

func (h *Handler) handleRequest(msg *nats.Msg) {
	ctx, span := h.tracer.Start(context.Background(), "handleRequest")
	defer span.End()
	span.SetAttributes(telemetry.String("nats.subject", msg.Subject))

	reply := h.dispatch(ctx, msg.Subject, msg.Data)

	if msg.Reply == "" {
		h.logger.Debug("Request without reply subject", zap.String("subject", msg.Subject))
		return
	}
	if err := msg.Respond(reply); err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to respond",
			zap.Error(err),
			zap.String("subject", msg.Subject),
		)
	}
}

// dispatch runs the operation named by subject and returns the encoded reply.
// Failures are reported in the reply body, never dropped.
func (h *Handler) dispatch(ctx context.Context, subject string, data []byte) []byte {
	result, err := h.route(ctx, subject, data)
	if err != nil {
		h.logger.Error("Request failed",
			zap.Error(err),
			zap.String("subject", subject),
		)
		result = newErrorResponse(err)
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		h.logger.Error("Failed to encode reply", zap.Error(err), zap.String("subject", subject))
		encoded, _ = json.Marshal(newErrorResponse(errors.Internal("encoding reply", err)))
	}
	return encoded
}

func (h *Handler) route(ctx context.Context, subject string, data []byte) (any, error) {
	switch subject {
	case IngestSubject:
		var req IngestRequest
		if err := decode(data, &req); err != nil {
			return nil, err
		}
		return h.ingest(ctx, req)

	case AddSubject:
		var req AddRequest
		if err := decode(data, &req); err != nil {
			return nil, err
		}
		vacancies := make([]models.Vacancy, len(req.Vacancies))
		for i, v := range req.Vacancies {
			vacancies[i] = models.NewVacancy(v.Title, v.URL, v.SalaryFrom, v.SalaryTo, v.Requirements, v.Responsibility, v.City)
		}
		if err := h.service.AddVacancies(ctx, vacancies); err != nil {
			return nil, err
		}
		return CountResponse{Count: len(vacancies)}, nil

	case ImportSubject:
		count, err := h.service.ImportRecords(ctx, data)
		if err != nil {
			return nil, err
		}
		return CountResponse{Count: count}, nil

	case QuerySubject:
		var params query.Params
		if err := decode(data, &params); err != nil {
			return nil, err
		}
		result, err := h.service.Query(ctx, params)
		if err != nil {
			return nil, err
		}
		return VacanciesResponse{Vacancies: result}, nil

	case DeleteSubject:
		var req DeleteRequest
		if err := decode(data, &req); err != nil {
			return nil, err
		}
		removed, err := h.service.DeleteVacancy(ctx, req.Vacancy)
		if err != nil {
			return nil, err
		}
		return CountResponse{Count: removed}, nil

	case ListSubject:
		all, err := h.service.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		return VacanciesResponse{Vacancies: all}, nil

	case ArchiveSubject:
		count, err := h.service.Archive(ctx)
		if err != nil {
			return nil, err
		}
		return CountResponse{Count: count}, nil
	}

	return nil, errors.NotFound(fmt.Sprintf("unknown subject %q", subject), nil)
}

func (h *Handler) ingest(ctx context.Context, req IngestRequest) (CountResponse, error) {
	keyword := strings.TrimSpace(req.Keyword)
	if keyword == "" {
		return CountResponse{}, errors.InvalidInput("keyword is required", nil)
	}

	count, err := h.service.Ingest(ctx, keyword)
	if err != nil {
		return CountResponse{}, err
	}

	event := messaging.IngestedEvent{Keyword: keyword, Count: count, IngestedAt: time.Now()}
	if err := h.publisher.PublishIngested(ctx, event); err != nil {
		h.logger.Warn("Failed to announce ingest", zap.String("keyword", keyword), zap.Error(err))
	}
	return CountResponse{Count: count}, nil
}

// decode treats an empty body as an empty request.
func decode(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.InvalidInput("decoding request", err)
	}
	return nil
}
