package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"estateflow/server/internal/estate"
	"estateflow/server/internal/models"
)

const dateLayout = "2006-01-02"

// Handler exposes the core services over HTTP. It carries no business
// logic; every rule lives in the estate package.
type Handler struct {
	logger     *logrus.Logger
	catalog    *estate.CatalogService
	properties *estate.PropertyService
	offers     *estate.OfferService
}

func NewHandler(catalog *estate.CatalogService, properties *estate.PropertyService, offers *estate.OfferService, logger *logrus.Logger) *Handler {
	return &Handler{
		logger:     logger,
		catalog:    catalog,
		properties: properties,
		offers:     offers,
	}
}

type PropertyRequest struct {
	Name              string  `json:"name" binding:"required"`
	TypeID            *uint   `json:"type_id"`
	TagIDs            []uint  `json:"tag_ids"`
	SellerID          *int64  `json:"seller_id"`
	Description       string  `json:"description"`
	Postcode          string  `json:"postcode"`
	DateAvailability  string  `json:"date_availability"`
	ExpectedPrice     float64 `json:"expected_price"`
	Bedrooms          *int    `json:"bedrooms"`
	LivingArea        int     `json:"living_area"`
	Facades           int     `json:"facades"`
	Garage            bool    `json:"garage"`
	Garden            bool    `json:"garden"`
	GardenArea        *int    `json:"garden_area"`
	GardenOrientation string  `json:"garden_orientation"`
}

type OfferRequest struct {
	PropertyID   uint    `json:"property_id" binding:"required"`
	BuyerID      int64   `json:"buyer_id" binding:"required"`
	Price        float64 `json:"price" binding:"required"`
	ValidityDays int     `json:"validity_days"`
}

type DeadlineRequest struct {
	DateDeadline string `json:"date_deadline" binding:"required"`
}

type BatchRequest struct {
	IDs []uint `json:"ids" binding:"required"`
}

type TypeRequest struct {
	Name     string `json:"name" binding:"required"`
	Sequence int    `json:"sequence"`
}

type TagRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

func (r *PropertyRequest) toInput() (estate.PropertyInput, error) {
	input := estate.PropertyInput{
		Name:              r.Name,
		TypeID:            r.TypeID,
		TagIDs:            r.TagIDs,
		SellerID:          r.SellerID,
		Description:       r.Description,
		Postcode:          r.Postcode,
		ExpectedPrice:     r.ExpectedPrice,
		Bedrooms:          r.Bedrooms,
		LivingArea:        r.LivingArea,
		Facades:           r.Facades,
		Garage:            r.Garage,
		Garden:            r.Garden,
		GardenOrientation: models.GardenOrientation(r.GardenOrientation),
	}
	if r.DateAvailability != "" {
		date, err := time.Parse(dateLayout, r.DateAvailability)
		if err != nil {
			return input, err
		}
		input.DateAvailability = date
	}

	// Editor convenience: an enabled garden without explicit values gets the
	// default area and orientation; a disabled one clears them.
	if r.GardenArea != nil {
		input.GardenArea = *r.GardenArea
	} else if r.Garden && r.GardenOrientation == "" {
		input.GardenArea = models.DefaultGardenArea
		input.GardenOrientation = models.OrientationNorth
	}
	if !r.Garden && r.GardenArea == nil {
		input.GardenArea = 0
		input.GardenOrientation = ""
	}
	return input, nil
}

// --- properties ---

func (h *Handler) CreateProperty(c *gin.Context) {
	var req PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	prop, err := h.properties.Create(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, prop)
}

func (h *Handler) UpdateProperty(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	prop, err := h.properties.Update(c.Request.Context(), id, input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prop)
}

func (h *Handler) GetProperty(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	prop, err := h.properties.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, propertyView(prop))
}

func (h *Handler) ListProperties(c *gin.Context) {
	filter := estate.PropertyFilter{
		State:           models.PropertyState(c.Query("state")),
		Postcode:        c.Query("postcode"),
		IncludeInactive: c.Query("include_inactive") == "true",
	}
	if typeID, ok := queryID(c, "type_id"); ok {
		filter.TypeID = &typeID
	}
	if tagID, ok := queryID(c, "tag_id"); ok {
		filter.TagID = &tagID
	}
	props, err := h.properties.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	views := make([]gin.H, 0, len(props))
	for i := range props {
		views = append(views, propertyView(&props[i]))
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) DeleteProperty(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.properties.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) MarkPropertySold(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	prop, err := h.properties.MarkSold(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prop)
}

func (h *Handler) MarkPropertyCanceled(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	prop, err := h.properties.MarkCanceled(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prop)
}

func (h *Handler) MarkPropertiesSold(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.properties.MarkSoldBatch(c.Request.Context(), req.IDs); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) MarkPropertiesCanceled(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.properties.MarkCanceledBatch(c.Request.Context(), req.IDs); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- offers ---

func (h *Handler) CreateOffer(c *gin.Context) {
	var req OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	offer, err := h.offers.Create(c.Request.Context(), estate.OfferInput{
		PropertyID:   req.PropertyID,
		BuyerID:      req.BuyerID,
		Price:        req.Price,
		ValidityDays: req.ValidityDays,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, offerView(offer))
}

func (h *Handler) ListOffers(c *gin.Context) {
	filter := estate.OfferFilter{
		Status: models.OfferStatus(c.Query("status")),
	}
	if propertyID, ok := queryID(c, "property_id"); ok {
		filter.PropertyID = &propertyID
	}
	if typeID, ok := queryID(c, "type_id"); ok {
		filter.TypeID = &typeID
	}
	offers, err := h.offers.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	views := make([]gin.H, 0, len(offers))
	for i := range offers {
		views = append(views, offerView(&offers[i]))
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) AcceptOffer(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	offer, err := h.offers.Accept(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, offerView(offer))
}

func (h *Handler) RefuseOffer(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	offer, err := h.offers.Refuse(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, offerView(offer))
}

func (h *Handler) SetOfferDeadline(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req DeadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	deadline, err := time.Parse(dateLayout, req.DateDeadline)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	offer, err := h.offers.SetDeadline(c.Request.Context(), id, deadline)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, offerView(offer))
}

// --- catalog ---

func (h *Handler) CreateType(c *gin.Context) {
	var req TypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	typ, err := h.catalog.CreateType(c.Request.Context(), req.Name, req.Sequence)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, typ)
}

func (h *Handler) UpdateType(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req TypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	typ, err := h.catalog.UpdateType(c.Request.Context(), id, req.Name, req.Sequence)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, typ)
}

func (h *Handler) DeleteType(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteType(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListTypes(c *gin.Context) {
	types, err := h.catalog.ListTypes(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

func (h *Handler) CreateTag(c *gin.Context) {
	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tag, err := h.catalog.CreateTag(c.Request.Context(), req.Name, req.Color)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (h *Handler) UpdateTag(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tag, err := h.catalog.UpdateTag(c.Request.Context(), id, req.Name, req.Color)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *Handler) DeleteTag(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteTag(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListTags(c *gin.Context) {
	tags, err := h.catalog.ListTags(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// --- helpers ---

// propertyView renders a property with its derived fields.
func propertyView(p *models.Property) gin.H {
	return gin.H{
		"property":   p,
		"total_area": p.TotalArea(),
		"best_price": p.BestPrice(),
	}
}

// offerView renders an offer with its derived deadline.
func offerView(o *models.Offer) gin.H {
	return gin.H{
		"offer":         o,
		"date_deadline": o.Deadline().Format(dateLayout),
	}
}

func (h *Handler) pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func queryID(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// respondError maps core errors onto HTTP statuses: validation failures are
// the caller's bad request, business-rule violations are conflicts.
func (h *Handler) respondError(c *gin.Context, err error) {
	var verr *estate.ValidationError
	var derr *estate.DomainError
	switch {
	case errors.Is(err, estate.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.As(err, &derr):
		c.JSON(http.StatusConflict, gin.H{"error": derr.Error()})
	default:
		h.logger.WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
