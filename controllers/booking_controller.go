package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"rageroom-backend/services"
	"rageroom-backend/utils"

	"github.com/gin-gonic/gin"
)

type createBookingRequest struct {
	BookingDate   string `json:"booking_date"`
	TimeSlot      string `json:"time_slot"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	Notes         string `json:"notes"`
	PaymentType   string `json:"payment_type"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type BookingController struct {
	Bookings       *services.BookingService
	RoomInfo       *services.RoomInfoService
	Receipts       *services.ReceiptService
	WhatsAppNumber string
}

func NewBookingController(bookings *services.BookingService, roomInfo *services.RoomInfoService, receipts *services.ReceiptService, whatsAppNumber string) *BookingController {
	return &BookingController{
		Bookings:       bookings,
		RoomInfo:       roomInfo,
		Receipts:       receipts,
		WhatsAppNumber: whatsAppNumber,
	}
}

func listQuery(c *gin.Context) services.ListQuery {
	return services.ListQuery{
		All:   c.Query("all") == "true",
		Month: c.Query("month"),
		Year:  c.Query("year"),
	}
}

// GET /api/bookings?month=&year= | ?all=true
func (ctrl *BookingController) GetBookings(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	list, err := ctrl.Bookings.List(c.Request.Context(), a, listQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /api/bookings
func (ctrl *BookingController) CreateBooking(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, services.ErrInvalidBody)
		return
	}

	b, err := ctrl.Bookings.Create(c.Request.Context(), a, services.CreateBookingInput{
		BookingDate:   req.BookingDate,
		TimeSlot:      req.TimeSlot,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Notes:         req.Notes,
		PaymentType:   req.PaymentType,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GET /api/bookings/:id
func (ctrl *BookingController) GetBooking(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	b, err := ctrl.Bookings.Get(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// PATCH /api/bookings/:id
func (ctrl *BookingController) UpdateBookingStatus(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if !a.IsAdmin {
		respondError(c, services.ErrAdminOnlyStatus)
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, services.ErrInvalidStatus)
		return
	}

	b, err := ctrl.Bookings.UpdateStatus(c.Request.Context(), a, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// DELETE /api/bookings/:id
func (ctrl *BookingController) DeleteBooking(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := ctrl.Bookings.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /api/bookings/availability?date=YYYY-MM-DD
func (ctrl *BookingController) GetAvailability(c *gin.Context) {
	day, err := ctrl.Bookings.Availability(c.Request.Context(), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, day)
}

// GET /api/slots
func (ctrl *BookingController) GetSlots(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.Bookings.Slots())
}

// GET /api/bookings/:id/whatsapp
func (ctrl *BookingController) GetWhatsAppLink(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	b, err := ctrl.Bookings.Get(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	url := utils.BuildWhatsAppURL(ctrl.WhatsAppNumber, services.WhatsAppMessageFor(b))
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// GET /api/bookings/:id/receipt
func (ctrl *BookingController) GetReceipt(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	b, err := ctrl.Bookings.Get(ctx, a, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	room, err := ctrl.RoomInfo.Get(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	pdf, err := ctrl.Receipts.Render(b, room)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=agendamento-%s.pdf", b.ID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// GET /api/bookings/export?month=&year=
func (ctrl *BookingController) ExportBookings(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if !a.IsAdmin {
		respondError(c, services.ErrForbidden)
		return
	}
	q := listQuery(c)
	q.All = q.Month == "" || q.Year == ""

	list, err := ctrl.Bookings.List(c.Request.Context(), a, q)
	if err != nil {
		respondError(c, err)
		return
	}
	data, err := services.ExportBookings(list)
	if err != nil {
		respondError(c, err)
		return
	}

	name := "agendamentos.xlsx"
	if !q.All {
		name = fmt.Sprintf("agendamentos-%s-%s.xlsx", strings.TrimSpace(q.Year), strings.TrimSpace(q.Month))
	}
	c.Header("Content-Disposition", "attachment; filename="+name)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
