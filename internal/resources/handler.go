package resources

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-erp/meridian/internal/pipeline"
	"github.com/meridian-erp/meridian/internal/rbac"
	"github.com/meridian-erp/meridian/internal/shared"
	"github.com/meridian-erp/meridian/internal/view"
)

// Handler manages resources module endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
	rbac      rbac.Middleware
	runner    *pipeline.Runner
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager, rbac rbac.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		csrf:      csrf,
		sessions:  sessions,
		rbac:      rbac,
		runner:    &pipeline.Runner{Logger: logger},
	}
}

// MountRoutes registers resources routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.Scope(shared.ModuleResources, shared.VerbView)))
		r.Get("/equipment-types", h.ListEquipmentTypes)
		r.Get("/equipment-types/new", h.NewEquipmentTypeForm)
		r.Get("/equipment-types/{id}/edit", h.EditEquipmentTypeForm)
		r.Get("/locations", h.ListLocations)
		r.Get("/locations/new", h.NewLocationForm)
		r.Get("/locations/{id}/edit", h.EditLocationForm)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.Scope(shared.ModuleResources, shared.VerbCreate), shared.Scope(shared.ModuleResources, shared.VerbUpdate), shared.Scope(shared.ModuleResources, shared.VerbDelete)))
		r.Post("/equipment-types", h.CreateEquipmentType)
		r.Post("/equipment-types/delete", h.DeactivateEquipmentType)
		r.Post("/equipment-types/{id}", h.UpdateEquipmentType)
		r.Post("/equipment-types/{id}/delete", h.DeactivateEquipmentType)
		r.Post("/locations", h.CreateLocation)
		r.Post("/locations/delete", h.DeleteLocation)
		r.Post("/locations/{id}", h.UpdateLocation)
		r.Post("/locations/{id}/delete", h.DeleteLocation)
	})
}

func (h *Handler) ListEquipmentTypes(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseListFilters(r.URL.Query())
	items, total, err := h.service.ListEquipmentTypes(r.Context(), filters)
	if err != nil {
		h.logger.Error("list equipment types", slog.Any("error", err))
		http.Error(w, "Failed to load equipment types", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/resources/equipment_types_list.html", map[string]any{
		"Types":      items,
		"Total":      total,
		"Pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	}, http.StatusOK)
}

func (h *Handler) NewEquipmentTypeForm(w http.ResponseWriter, r *http.Request) {
	h.renderEquipmentTypeForm(w, r, nil, map[string]string{})
}

func (h *Handler) EditEquipmentTypeForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	et, err := h.service.GetEquipmentType(r.Context(), id)
	if err != nil {
		h.logger.Error("get equipment type", slog.Any("error", err), slog.Int64("id", id))
		http.NotFound(w, r)
		return
	}
	h.renderEquipmentTypeForm(w, r, &et, map[string]string{})
}

func (h *Handler) CreateEquipmentType(w http.ResponseWriter, r *http.Request) {
	pipeline.Run(h.runner, w, r, pipeline.Action[EquipmentTypeInput]{
		Module:   shared.ModuleResources,
		Verb:     shared.VerbCreate,
		Fallback: "/resources/equipment-types",
		Parse: func(r *http.Request) (EquipmentTypeInput, map[string]string, error) {
			in, errs := parseEquipmentTypeForm(r)
			return in, errs, nil
		},
		Mutate: func(ctx context.Context, actorID int64, in EquipmentTypeInput) error {
			_, err := h.service.CreateEquipmentType(ctx, actorID, in.Type)
			return err
		},
		Location:     func(EquipmentTypeInput) string { return "/resources/equipment-types" },
		SuccessFlash: "Equipment type created",
		Invalid: func(w http.ResponseWriter, r *http.Request, in EquipmentTypeInput, errs map[string]string) {
			h.renderEquipmentTypeForm(w, r, &in.Type, errs)
		},
	})
}

func (h *Handler) UpdateEquipmentType(w http.ResponseWriter, r *http.Request) {
	pipeline.Run(h.runner, w, r, pipeline.Action[EquipmentTypeInput]{
		Module:   shared.ModuleResources,
		Verb:     shared.VerbUpdate,
		Fallback: "/resources/equipment-types",
		Parse: func(r *http.Request) (EquipmentTypeInput, map[string]string, error) {
			id, err := pipeline.RequireID(r, "equipment type")
			if err != nil {
				return EquipmentTypeInput{}, nil, err
			}
			in, errs := parseEquipmentTypeForm(r)
			in.ID = id
			in.Type.ID = id
			return in, errs, nil
		},
		Mutate: func(ctx context.Context, actorID int64, in EquipmentTypeInput) error {
			return h.service.UpdateEquipmentType(ctx, actorID, in.Type)
		},
		Location:     func(EquipmentTypeInput) string { return "/resources/equipment-types" },
		SuccessFlash: "Equipment type updated",
		Invalid: func(w http.ResponseWriter, r *http.Request, in EquipmentTypeInput, errs map[string]string) {
			h.renderEquipmentTypeForm(w, r, &in.Type, errs)
		},
	})
}

func (h *Handler) DeactivateEquipmentType(w http.ResponseWriter, r *http.Request) {
	pipeline.Run(h.runner, w, r, pipeline.Action[int64]{
		Module:   shared.ModuleResources,
		Verb:     shared.VerbDelete,
		Fallback: "/resources/equipment-types",
		Parse: func(r *http.Request) (int64, map[string]string, error) {
			id, err := pipeline.RequireID(r, "equipment type")
			return id, nil, err
		},
		Mutate: func(ctx context.Context, actorID int64, id int64) error {
			return h.service.DeactivateEquipmentType(ctx, actorID, id)
		},
		Location:     func(int64) string { return "/resources/equipment-types" },
		SuccessFlash: "Equipment type deactivated",
		Invalid:      func(http.ResponseWriter, *http.Request, int64, map[string]string) {},
	})
}

func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseListFilters(r.URL.Query())
	items, total, err := h.service.ListLocations(r.Context(), filters)
	if err != nil {
		h.logger.Error("list locations", slog.Any("error", err))
		http.Error(w, "Failed to load locations", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/resources/locations_list.html", map[string]any{
		"Locations":  items,
		"Total":      total,
		"Pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	}, http.StatusOK)
}

func (h *Handler) NewLocationForm(w http.ResponseWriter, r *http.Request) {
	h.renderLocationForm(w, r, nil, map[string]string{})
}

func (h *Handler) EditLocationForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	loc, err := h.service.GetLocation(r.Context(), id)
	if err != nil {
		h.logger.Error("get location", slog.Any("error", err), slog.Int64("id", id))
		http.NotFound(w, r)
		return
	}
	h.renderLocationForm(w, r, &loc, map[string]string{})
}

func (h *Handler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	pipeline.Run(h.runner, w, r, pipeline.Action[LocationInput]{
		Module:   shared.ModuleResources,
		Verb:     shared.VerbCreate,
		Fallback: "/resources/locations",
		Parse: func(r *http.Request) (LocationInput, map[string]string, error) {
			in, errs := parseLocationForm(r)
			return in, errs, nil
		},
		Mutate: func(ctx context.Context, actorID int64, in LocationInput) error {
			_, err := h.service.CreateLocation(ctx, actorID, in.Location)
			return err
		},
		Location:     func(LocationInput) string { return "/resources/locations" },
		SuccessFlash: "Location created",
		Invalid: func(w http.ResponseWriter, r *http.Request, in LocationInput, errs map[string]string) {
			h.renderLocationForm(w, r, &in.Location, errs)
		},
	})
}

func (h *Handler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	pipeline.Run(h.runner, w, r, pipeline.Action[LocationInput]{
		Module:   shared.ModuleResources,
		Verb:     shared.VerbUpdate,
		Fallback: "/resources/locations",
		Parse: func(r *http.Request) (LocationInput, map[string]string, error) {
			id, err := pipeline.RequireID(r, "location")
			if err != nil {
				return LocationInput{}, nil, err
			}
			in, errs := parseLocationForm(r)
			in.ID = id
			in.Location.ID = id
			return in, errs, nil
		},
		Mutate: func(ctx context.Context, actorID int64, in LocationInput) error {
			return h.service.UpdateLocation(ctx, actorID, in.Location)
		},
		Location:     func(LocationInput) string { return "/resources/locations" },
		SuccessFlash: "Location updated",
		Invalid: func(w http.ResponseWriter, r *http.Request, in LocationInput, errs map[string]string) {
			h.renderLocationForm(w, r, &in.Location, errs)
		},
	})
}

func (h *Handler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	pipeline.Run(h.runner, w, r, pipeline.Action[int64]{
		Module:   shared.ModuleResources,
		Verb:     shared.VerbDelete,
		Fallback: "/resources/locations",
		Parse: func(r *http.Request) (int64, map[string]string, error) {
			id, err := pipeline.RequireID(r, "location")
			return id, nil, err
		},
		Mutate: func(ctx context.Context, actorID int64, id int64) error {
			return h.service.DeleteLocation(ctx, actorID, id)
		},
		Location:     func(int64) string { return "/resources/locations" },
		SuccessFlash: "Location deleted",
		Invalid:      func(http.ResponseWriter, *http.Request, int64, map[string]string) {},
	})
}

func (h *Handler) renderEquipmentTypeForm(w http.ResponseWriter, r *http.Request, et *EquipmentType, errs map[string]string) {
	h.render(w, r, "pages/resources/equipment_type_form.html", map[string]any{
		"Type":   et,
		"Errors": errs,
	}, http.StatusOK)
}

func (h *Handler) renderLocationForm(w http.ResponseWriter, r *http.Request, loc *Location, errs map[string]string) {
	h.render(w, r, "pages/resources/location_form.html", map[string]any{
		"Location": loc,
		"Errors":   errs,
	}, http.StatusOK)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Resources",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Perms:       rbac.PermissionsFromContext(r.Context()),
		Filters:     shared.ParseListFilters(r.URL.Query()),
		Data:        data,
	}
	w.WriteHeader(status)
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
	}
}
