package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/carojasb94/collection-agency/internal/accounts/domain"
	"github.com/carojasb94/collection-agency/internal/accounts/service"
)

type AccountsHandler struct {
	debtSvc        *service.DebtService
	importSvc      *service.ImportService
	maxUploadBytes int64
}

func NewAccountsHandler(debtSvc *service.DebtService, importSvc *service.ImportService, maxUploadBytes int64) *AccountsHandler {
	return &AccountsHandler{
		debtSvc:        debtSvc,
		importSvc:      importSvc,
		maxUploadBytes: maxUploadBytes,
	}
}

// RegisterRoutes mounts /accounts on r.
func (h *AccountsHandler) RegisterRoutes(r *gin.RouterGroup) {
	accounts := r.Group("/accounts")
	{
		accounts.GET("", h.ListDebts)
		// Any method reaches the handler so non-POST gets a JSON 405.
		accounts.Any("/csv", h.UploadCSV)
	}
}

// ListDebts returns a page of debts matching the query filters.
// GET /api/v1/accounts?min_balance=100&max_balance=1000&status=IN_COLLECTION
func (h *AccountsHandler) ListDebts(c *gin.Context) {
	var q ListDebtsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	filter, err := q.toFilter()
	if err != nil {
		badRequest(c, err)
		return
	}
	page := q.page()

	debts, total, err := h.debtSvc.List(c.Request.Context(), filter, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	results := make([]DebtResp, 0, len(debts))
	for _, d := range debts {
		results = append(results, newDebtResp(d))
	}
	next, previous := pageLinks(c, page, total)

	c.JSON(http.StatusOK, ListDebtsResp{
		Count:    total,
		Next:     next,
		Previous: previous,
		Results:  results,
	})
}

// UploadCSV imports the debts in the multipart field "file".
// POST /api/v1/accounts/csv
func (h *AccountsHandler) UploadCSV(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Only POST method allowed"})
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "CSV file is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "CSV file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	summary, err := h.importSvc.Import(c.Request.Context(), file)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrImportBusy) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, UploadResp{
		Status:  "success",
		Data:    summary,
		Message: "File processed.",
	})
}

// ---------------------------------------------------------

type AgencyHandler struct {
	svc *service.AgencyService
}

func NewAgencyHandler(svc *service.AgencyService) *AgencyHandler {
	return &AgencyHandler{svc: svc}
}

func (h *AgencyHandler) RegisterRoutes(r *gin.RouterGroup) {
	agencies := r.Group("/agencies")
	{
		agencies.GET("", h.ListAgencies)
		agencies.POST("", h.CreateAgency)
	}
}

// ListAgencies GET /api/v1/agencies
func (h *AgencyHandler) ListAgencies(c *gin.Context) {
	agencies, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	resp := make([]AgencyResp, 0, len(agencies))
	for _, a := range agencies {
		resp = append(resp, AgencyResp{ID: a.ID, Name: a.Name})
	}
	c.JSON(http.StatusOK, resp)
}

// CreateAgency POST /api/v1/agencies
func (h *AgencyHandler) CreateAgency(c *gin.Context) {
	var req CreateAgencyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	agency, err := h.svc.Create(c.Request.Context(), req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrAgencyNameRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, AgencyResp{ID: agency.ID, Name: agency.Name})
}

// badRequest answers 400, listing the failing validation tag per field
// when the error comes from the validator.
func badRequest(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
}
