package accounting

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-erp/meridian/internal/pipeline"
	"github.com/meridian-erp/meridian/internal/rbac"
	"github.com/meridian-erp/meridian/internal/shared"
	"github.com/meridian-erp/meridian/internal/view"
)

// Handler manages accounting module endpoints.
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

// MountRoutes registers accounting routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.Scope(shared.ModuleAccounting, shared.VerbView)))
		r.Get("/accounts", h.Chart)
		r.Get("/accounts/export", h.ExportChart)
		r.Get("/accounts/new", h.NewAccountForm)
		r.Get("/accounts/{id}/edit", h.EditAccountForm)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.Scope(shared.ModuleAccounting, shared.VerbCreate), shared.Scope(shared.ModuleAccounting, shared.VerbUpdate), shared.Scope(shared.ModuleAccounting, shared.VerbDelete)))
		r.Post("/accounts", h.CreateAccount)
		r.Post("/accounts/delete", h.DeactivateAccount)
		r.Post("/accounts/{id}", h.UpdateAccount)
		r.Post("/accounts/{id}/delete", h.DeactivateAccount)
	})
}

// Chart renders the chart of accounts split by financial statement.
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	chart, err := h.service.LoadChart(r.Context())
	if err != nil {
		h.logger.Error("load chart of accounts", slog.Any("error", err))
		http.Error(w, "Failed to load chart of accounts", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/accounting/chart.html", map[string]any{
		"BalanceSheet":    chart.BalanceSheet,
		"IncomeStatement": chart.IncomeStatement,
	}, http.StatusOK)
}

// ExportChart streams the chart of accounts as a CSV download.
func (h *Handler) ExportChart(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="chart-of-accounts-`+time.Now().Format("2006-01-02")+`.csv"`)
	if err := h.service.ExportChartCSV(r.Context(), w); err != nil {
		h.logger.Error("export chart of accounts", slog.Any("error", err))
	}
}

func (h *Handler) NewAccountForm(w http.ResponseWriter, r *http.Request) {
	h.renderAccountForm(w, r, nil, map[string]string{})
}

func (h *Handler) EditAccountForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	account, err := h.service.GetAccount(r.Context(), id)
	if err != nil {
		h.logger.Error("get account", slog.Any("error", err), slog.Int64("id", id))
		http.NotFound(w, r)
		return
	}
	h.renderAccountForm(w, r, &account, map[string]string{})
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	pipeline.Run(h.runner, w, r, pipeline.Action[AccountInput]{
		Module:   shared.ModuleAccounting,
		Verb:     shared.VerbCreate,
		Fallback: "/accounting/accounts",
		Parse: func(r *http.Request) (AccountInput, map[string]string, error) {
			in, errs := parseAccountForm(r)
			return in, errs, nil
		},
		Mutate: func(ctx context.Context, actorID int64, in AccountInput) error {
			_, err := h.service.CreateAccount(ctx, actorID, in.Account)
			return err
		},
		Location:     func(AccountInput) string { return "/accounting/accounts" },
		SuccessFlash: "Account created",
		Invalid: func(w http.ResponseWriter, r *http.Request, in AccountInput, errs map[string]string) {
			h.renderAccountForm(w, r, &in.Account, errs)
		},
	})
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	pipeline.Run(h.runner, w, r, pipeline.Action[AccountInput]{
		Module:   shared.ModuleAccounting,
		Verb:     shared.VerbUpdate,
		Fallback: "/accounting/accounts",
		Parse: func(r *http.Request) (AccountInput, map[string]string, error) {
			id, err := pipeline.RequireID(r, "account")
			if err != nil {
				return AccountInput{}, nil, err
			}
			in, errs := parseAccountForm(r)
			in.ID = id
			in.Account.ID = id
			return in, errs, nil
		},
		Mutate: func(ctx context.Context, actorID int64, in AccountInput) error {
			return h.service.UpdateAccount(ctx, actorID, in.Account)
		},
		Location:     func(AccountInput) string { return "/accounting/accounts" },
		SuccessFlash: "Account updated",
		Invalid: func(w http.ResponseWriter, r *http.Request, in AccountInput, errs map[string]string) {
			h.renderAccountForm(w, r, &in.Account, errs)
		},
	})
}

func (h *Handler) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	pipeline.Run(h.runner, w, r, pipeline.Action[int64]{
		Module:   shared.ModuleAccounting,
		Verb:     shared.VerbDelete,
		Fallback: "/accounting/accounts",
		Parse: func(r *http.Request) (int64, map[string]string, error) {
			id, err := pipeline.RequireID(r, "account")
			return id, nil, err
		},
		Mutate: func(ctx context.Context, actorID int64, id int64) error {
			return h.service.DeactivateAccount(ctx, actorID, id)
		},
		Location:     func(int64) string { return "/accounting/accounts" },
		SuccessFlash: "Account deactivated",
		Invalid:      func(http.ResponseWriter, *http.Request, int64, map[string]string) {},
	})
}

func (h *Handler) renderAccountForm(w http.ResponseWriter, r *http.Request, account *Account, errs map[string]string) {
	h.render(w, r, "pages/accounting/account_form.html", map[string]any{
		"Account":         account,
		"Errors":          errs,
		"AccountTypes":    AccountTypes(),
		"Classifications": Classifications(),
		"NormalBalances":  NormalBalances(),
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
		Title:       "Accounting",
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
