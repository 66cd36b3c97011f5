package parts

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

// Handler manages parts module endpoints.
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

// MountRoutes registers parts routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.Scope(shared.ModuleParts, shared.VerbView)))
		r.Get("/", h.ListParts)
		r.Get("/new", h.NewPartForm)
		r.Get("/groups", h.ListGroups)
		r.Get("/groups/new", h.NewGroupForm)
		r.Get("/groups/{id}/edit", h.EditGroupForm)
		r.Get("/units", h.ListUnits)
		r.Get("/units/new", h.NewUnitForm)
		r.Get("/units/{id}/edit", h.EditUnitForm)
		r.Get("/{id}", h.ShowPart)
		r.Get("/{id}/edit", h.EditPartForm)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.Scope(shared.ModuleParts, shared.VerbCreate), shared.Scope(shared.ModuleParts, shared.VerbUpdate), shared.Scope(shared.ModuleParts, shared.VerbDelete)))
		r.Post("/", h.CreatePart)
		r.Post("/groups", h.CreateGroup)
		r.Post("/groups/{id}", h.UpdateGroup)
		r.Post("/groups/delete", h.DeleteGroup)
		r.Post("/groups/{id}/delete", h.DeleteGroup)
		r.Post("/units", h.CreateUnit)
		r.Post("/units/{id}", h.UpdateUnit)
		r.Post("/units/delete", h.DeleteUnit)
		r.Post("/units/{id}/delete", h.DeleteUnit)
		r.Post("/delete", h.DeletePart)
		r.Post("/{id}", h.UpdatePart)
		r.Post("/{id}/delete", h.DeletePart)
	})
}

func (h *Handler) ListParts(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseListFilters(r.URL.Query())
	items, total, err := h.service.ListParts(r.Context(), filters)
	if err != nil {
		h.logger.Error("list parts", slog.Any("error", err))
		http.Error(w, "Failed to load parts", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/parts/parts_list.html", map[string]any{
		"Parts":      items,
		"Total":      total,
		"Pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	}, http.StatusOK)
}

func (h *Handler) ShowPart(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	part, err := h.service.GetPart(r.Context(), id)
	if err != nil {
		h.logger.Error("get part", slog.Any("error", err), slog.Int64("id", id))
		http.NotFound(w, r)
		return
	}
	h.render(w, r, "pages/parts/part_detail.html", map[string]any{"Part": part}, http.StatusOK)
}

func (h *Handler) NewPartForm(w http.ResponseWriter, r *http.Request) {
	h.renderPartForm(w, r, nil, map[string]string{})
}

func (h *Handler) EditPartForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	part, err := h.service.GetPart(r.Context(), id)
	if err != nil {
		h.logger.Error("get part", slog.Any("error", err), slog.Int64("id", id))
		http.NotFound(w, r)
		return
	}
	h.renderPartForm(w, r, &part, map[string]string{})
}

func (h *Handler) CreatePart(w http.ResponseWriter, r *http.Request) {
	pipeline.Run(h.runner, w, r, pipeline.Action[PartInput]{
		Module:   shared.ModuleParts,
		Verb:     shared.VerbCreate,
		Fallback: "/parts",
		Parse: func(r *http.Request) (PartInput, map[string]string, error) {
			in, errs := parsePartForm(r)
			return in, errs, nil
		},
		Mutate: func(ctx context.Context, actorID int64, in PartInput) error {
			_, err := h.service.CreatePart(ctx, actorID, in.Part)
			return err
		},
		Location:     func(PartInput) string { return "/parts" },
		SuccessFlash: "Part created",
		Invalid: func(w http.ResponseWriter, r *http.Request, in PartInput, errs map[string]string) {
			h.renderPartForm(w, r, &in.Part, errs)
		},
	})
}

func (h *Handler) UpdatePart(w http.ResponseWriter, r *http.Request) {
	pipeline.Run(h.runner, w, r, pipeline.Action[PartInput]{
		Module:   shared.ModuleParts,
		Verb:     shared.VerbUpdate,
		Fallback: "/parts",
		Parse: func(r *http.Request) (PartInput, map[string]string, error) {
			id, err := pipeline.RequireID(r, "part")
			if err != nil {
				return PartInput{}, nil, err
			}
			in, errs := parsePartForm(r)
			in.ID = id
			in.Part.ID = id
			return in, errs, nil
		},
		Mutate: func(ctx context.Context, actorID int64, in PartInput) error {
			return h.service.UpdatePart(ctx, actorID, in.Part)
		},
		Location: func(in PartInput) string {
			return "/parts/" + strconv.FormatInt(in.ID, 10)
		},
		SuccessFlash: "Part updated",
		Invalid: func(w http.ResponseWriter, r *http.Request, in PartInput, errs map[string]string) {
			h.renderPartForm(w, r, &in.Part, errs)
		},
	})
}

func (h *Handler) DeletePart(w http.ResponseWriter, r *http.Request) {
	h.runDelete(w, r, "part", "/parts", "Part deleted", h.service.DeletePart)
}

func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseListFilters(r.URL.Query())
	items, total, err := h.service.ListGroups(r.Context(), filters)
	if err != nil {
		h.logger.Error("list part groups", slog.Any("error", err))
		http.Error(w, "Failed to load part groups", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/parts/groups_list.html", map[string]any{
		"Groups":     items,
		"Total":      total,
		"Pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	}, http.StatusOK)
}

func (h *Handler) NewGroupForm(w http.ResponseWriter, r *http.Request) {
	h.renderGroupForm(w, r, nil, map[string]string{})
}

func (h *Handler) EditGroupForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	group, err := h.service.GetGroup(r.Context(), id)
	if err != nil {
		h.logger.Error("get part group", slog.Any("error", err), slog.Int64("id", id))
		http.NotFound(w, r)
		return
	}
	h.renderGroupForm(w, r, &group, map[string]string{})
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	pipeline.Run(h.runner, w, r, pipeline.Action[GroupInput]{
		Module:   shared.ModuleParts,
		Verb:     shared.VerbCreate,
		Fallback: "/parts/groups",
		Parse: func(r *http.Request) (GroupInput, map[string]string, error) {
			in, errs := parseGroupForm(r)
			return in, errs, nil
		},
		Mutate: func(ctx context.Context, actorID int64, in GroupInput) error {
			_, err := h.service.CreateGroup(ctx, actorID, in.Group)
			return err
		},
		Location:     func(GroupInput) string { return "/parts/groups" },
		SuccessFlash: "Part group created",
		Invalid: func(w http.ResponseWriter, r *http.Request, in GroupInput, errs map[string]string) {
			h.renderGroupForm(w, r, &in.Group, errs)
		},
	})
}

func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	pipeline.Run(h.runner, w, r, pipeline.Action[GroupInput]{
		Module:   shared.ModuleParts,
		Verb:     shared.VerbUpdate,
		Fallback: "/parts/groups",
		Parse: func(r *http.Request) (GroupInput, map[string]string, error) {
			id, err := pipeline.RequireID(r, "part group")
			if err != nil {
				return GroupInput{}, nil, err
			}
			in, errs := parseGroupForm(r)
			in.ID = id
			in.Group.ID = id
			return in, errs, nil
		},
		Mutate: func(ctx context.Context, actorID int64, in GroupInput) error {
			return h.service.UpdateGroup(ctx, actorID, in.Group)
		},
		Location:     func(GroupInput) string { return "/parts/groups" },
		SuccessFlash: "Part group updated",
		Invalid: func(w http.ResponseWriter, r *http.Request, in GroupInput, errs map[string]string) {
			h.renderGroupForm(w, r, &in.Group, errs)
		},
	})
}

func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	h.runDelete(w, r, "part group", "/parts/groups", "Part group deleted", h.service.DeleteGroup)
}

func (h *Handler) ListUnits(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseListFilters(r.URL.Query())
	items, total, err := h.service.ListUnits(r.Context(), filters)
	if err != nil {
		h.logger.Error("list units of measure", slog.Any("error", err))
		http.Error(w, "Failed to load units of measure", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/parts/units_list.html", map[string]any{
		"Units":      items,
		"Total":      total,
		"Pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	}, http.StatusOK)
}

func (h *Handler) NewUnitForm(w http.ResponseWriter, r *http.Request) {
	h.renderUnitForm(w, r, nil, map[string]string{})
}

func (h *Handler) EditUnitForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	unit, err := h.service.GetUnit(r.Context(), id)
	if err != nil {
		h.logger.Error("get unit of measure", slog.Any("error", err), slog.Int64("id", id))
		http.NotFound(w, r)
		return
	}
	h.renderUnitForm(w, r, &unit, map[string]string{})
}

func (h *Handler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	pipeline.Run(h.runner, w, r, pipeline.Action[UnitInput]{
		Module:   shared.ModuleParts,
		Verb:     shared.VerbCreate,
		Fallback: "/parts/units",
		Parse: func(r *http.Request) (UnitInput, map[string]string, error) {
			in, errs := parseUnitForm(r)
			return in, errs, nil
		},
		Mutate: func(ctx context.Context, actorID int64, in UnitInput) error {
			_, err := h.service.CreateUnit(ctx, actorID, in.Unit)
			return err
		},
		Location:     func(UnitInput) string { return "/parts/units" },
		SuccessFlash: "Unit of measure created",
		Invalid: func(w http.ResponseWriter, r *http.Request, in UnitInput, errs map[string]string) {
			h.renderUnitForm(w, r, &in.Unit, errs)
		},
	})
}

func (h *Handler) UpdateUnit(w http.ResponseWriter, r *http.Request) {
	pipeline.Run(h.runner, w, r, pipeline.Action[UnitInput]{
		Module:   shared.ModuleParts,
		Verb:     shared.VerbUpdate,
		Fallback: "/parts/units",
		Parse: func(r *http.Request) (UnitInput, map[string]string, error) {
			id, err := pipeline.RequireID(r, "unit of measure")
			if err != nil {
				return UnitInput{}, nil, err
			}
			in, errs := parseUnitForm(r)
			in.ID = id
			in.Unit.ID = id
			return in, errs, nil
		},
		Mutate: func(ctx context.Context, actorID int64, in UnitInput) error {
			return h.service.UpdateUnit(ctx, actorID, in.Unit)
		},
		Location:     func(UnitInput) string { return "/parts/units" },
		SuccessFlash: "Unit of measure updated",
		Invalid: func(w http.ResponseWriter, r *http.Request, in UnitInput, errs map[string]string) {
			h.renderUnitForm(w, r, &in.Unit, errs)
		},
	})
}

func (h *Handler) DeleteUnit(w http.ResponseWriter, r *http.Request) {
	h.runDelete(w, r, "unit of measure", "/parts/units", "Unit of measure deleted", h.service.DeleteUnit)
}

func (h *Handler) runDelete(w http.ResponseWriter, r *http.Request, entity, fallback, flash string, del func(context.Context, int64, int64) error) {
	pipeline.Run(h.runner, w, r, pipeline.Action[int64]{
		Module:   shared.ModuleParts,
		Verb:     shared.VerbDelete,
		Fallback: fallback,
		Parse: func(r *http.Request) (int64, map[string]string, error) {
			id, err := pipeline.RequireID(r, entity)
			return id, nil, err
		},
		Mutate: func(ctx context.Context, actorID int64, id int64) error {
			return del(ctx, actorID, id)
		},
		Location:     func(int64) string { return fallback },
		SuccessFlash: flash,
		Invalid:      func(http.ResponseWriter, *http.Request, int64, map[string]string) {},
	})
}

func (h *Handler) renderPartForm(w http.ResponseWriter, r *http.Request, part *Part, errs map[string]string) {
	groups, _, err := h.service.ListGroups(r.Context(), shared.ListFilters{Page: 1, Limit: 200})
	if err != nil {
		h.logger.Warn("load groups for part form", slog.Any("error", err))
	}
	units, _, err := h.service.ListUnits(r.Context(), shared.ListFilters{Page: 1, Limit: 200})
	if err != nil {
		h.logger.Warn("load units for part form", slog.Any("error", err))
	}
	h.render(w, r, "pages/parts/part_form.html", map[string]any{
		"Part":           part,
		"Errors":         errs,
		"Groups":         groups,
		"Units":          units,
		"PartTypes":      PartTypes(),
		"Replenishments": ReplenishmentSystems(),
	}, http.StatusOK)
}

func (h *Handler) renderGroupForm(w http.ResponseWriter, r *http.Request, group *PartGroup, errs map[string]string) {
	h.render(w, r, "pages/parts/group_form.html", map[string]any{
		"Group":  group,
		"Errors": errs,
	}, http.StatusOK)
}

func (h *Handler) renderUnitForm(w http.ResponseWriter, r *http.Request, unit *UnitOfMeasure, errs map[string]string) {
	h.render(w, r, "pages/parts/unit_form.html", map[string]any{
		"Unit":   unit,
		"Errors": errs,
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
		Title:       "Parts",
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
