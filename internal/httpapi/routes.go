// Package httpapi implements the reference HTTP binding: a minimal
// chi router exposing POST /v1/plans and GET /v1/plans/{id} over an
// Orchestrator and a ResultStore.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"github.com/urban-gardening-assistant/cultivation-planner/config"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/planner"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/sources"
	"github.com/urban-gardening-assistant/cultivation-planner/pkg/dto"
)

// NewRouter wires the core middleware chain (request ID, real IP, request
// logging, panic recovery, permissive CORS) and the plan routes onto a
// fresh chi.Mux. Every POST /v1/plans request carries its own fields,
// crops, weather and rules, so each request builds a fresh Orchestrator
// over static in-memory sources rather than sharing one across requests.
func NewRouter(optimizer config.OptimizerConfig, store *planner.ResultStore) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	router.Route("/v1/plans", func(r chi.Router) {
		r.Post("/", createPlan(optimizer, store))
		r.Get("/{id}", getPlan(store))
	})

	return router
}

func createPlan(optimizer config.OptimizerConfig, store *planner.ResultStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.PlanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, dto.ErrorResponse{Code: "INVALID_REQUEST", Message: "invalid request body", Error: err.Error()})
			return
		}
		if err := req.Validate(); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, dto.ErrorResponse{Code: "VALIDATION_FAILED", Message: "request failed validation", Error: err.Error()})
			return
		}

		fields, crops, weather, rules, err := toDomainInputs(req)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, dto.ErrorResponse{Code: "INVALID_INPUT", Message: "request could not be converted", Error: err.Error()})
			return
		}

		orch, err := planner.NewOrchestrator(
			sources.StaticFieldSource{Values: fields},
			sources.StaticCropSource{Values: crops},
			sources.StaticWeatherSource{Series: weather},
			sources.StaticInteractionRuleSource{Values: rules},
			optimizer,
		)
		if err != nil {
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, dto.ErrorResponse{Code: "ORCHESTRATOR_INIT_FAILED", Message: "failed to initialize orchestrator", Error: err.Error()})
			return
		}

		result, err := orch.Optimize(r.Context(), planner.PlanRequest{
			HorizonStart: req.HorizonStart,
			HorizonEnd:   req.HorizonEnd,
		})
		if err != nil {
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, dto.ErrorResponse{Code: "OPTIMIZATION_FAILED", Message: "optimization failed", Error: err.Error()})
			return
		}

		resp := fromDomainResult(result)
		if store != nil {
			id, err := store.Save(r.Context(), result)
			if err != nil {
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, dto.ErrorResponse{Code: "STORE_FAILED", Message: "failed to persist result", Error: err.Error()})
				return
			}
			resp.ID = id
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp)
	}
}

func getPlan(store *planner.ResultStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			render.Status(r, http.StatusNotImplemented)
			render.JSON(w, r, dto.ErrorResponse{Code: "STORE_UNAVAILABLE", Message: "no result store configured"})
			return
		}
		id := chi.URLParam(r, "id")
		record, err := store.Get(r.Context(), id)
		if err != nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, dto.ErrorResponse{Code: "NOT_FOUND", Message: "plan not found", Error: err.Error()})
			return
		}
		render.Status(r, http.StatusOK)
		render.JSON(w, r, fromRecord(record))
	}
}
