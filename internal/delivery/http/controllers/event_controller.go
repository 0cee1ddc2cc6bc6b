package controllers

import (
	"log/slog"
	"net/http"

	"liveask/internal/delivery/http/helpers"
	"liveask/internal/delivery/http/middleware"
	"liveask/internal/domain"
)

// CreateEventRequest is the request body for POST /api/event.
type CreateEventRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Contact     string `json:"contact"`
}

// Validate implements Validator. Structural checks only; length and format
// rules live in the service layer.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if c.Name == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

// CreateEventResponse is the response body for POST /api/event. It is the
// only place the moderator token ever appears in a response.
type CreateEventResponse struct {
	ID             string `json:"id"`
	ModeratorToken string `json:"moderator_token"`
	Name           string `json:"name"`
	Description    string `json:"description"`
}

// AddQuestionRequest is the request body for POST /api/event/{eventID}/question.
type AddQuestionRequest struct {
	Text string `json:"text"`
}

// Validate implements Validator.
func (q AddQuestionRequest) Validate() []string {
	var errs []string
	if q.Text == "" {
		errs = append(errs, "text is required")
	}
	return errs
}

// EditLikeRequest is the request body for PUT /api/event/{eventID}/like.
type EditLikeRequest struct {
	QuestionID string `json:"question_id"`
}

// Validate implements Validator.
func (l EditLikeRequest) Validate() []string {
	var errs []string
	if l.QuestionID == "" {
		errs = append(errs, "question_id is required")
	}
	return errs
}

// ModerateQuestionRequest is the request body for the moderation endpoint.
type ModerateQuestionRequest struct {
	Action string `json:"action"`
}

// Validate implements Validator.
func (m ModerateQuestionRequest) Validate() []string {
	var errs []string
	if !domain.ModerateAction(m.Action).Valid() {
		errs = append(errs, "action must be one of hide, show, answer, delete")
	}
	return errs
}

type EventController struct {
	Logger       *slog.Logger
	Service      domain.EventService
	Fingerprints domain.Fingerprinter
}

func NewEventController(logger *slog.Logger, svc domain.EventService, fp domain.Fingerprinter) *EventController {
	return &EventController{
		Logger:       logger,
		Service:      svc,
		Fingerprints: fp,
	}
}

// fingerprint derives the caller's pseudo-identity for an event from the
// client metadata the middleware resolved. Missing metadata degrades to an
// empty-field fingerprint rather than failing the request.
func (c *EventController) fingerprint(r *http.Request, eventID string) domain.Fingerprint {
	meta, _ := middleware.ClientMetaFromContext(r.Context())
	return c.Fingerprints.Derive(eventID, meta.IP, meta.UserAgent)
}

func (c *EventController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	helpers.WriteDomainError(w, err)
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Create a new Q&A event. Returns the public ID and the secret moderator token; the token is never returned by any other endpoint. If contact is set, a moderator link is emailed to it.
// @Tags events
// @Accept json
// @Produce json
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event with moderator_token"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/event [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	ev, err := c.Service.CreateEvent(r.Context(), req.Name, req.Description, req.Contact)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, CreateEventResponse{
		ID:             ev.ID,
		ModeratorToken: ev.ModeratorToken,
		Name:           ev.Name,
		Description:    ev.Description,
	})
}

// GetEvent godoc
// @Summary Get the public view of an event
// @Description Returns the event with visible questions ranked by like count. Hidden questions are omitted.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event view"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/event/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	view, err := c.Service.GetEvent(r.Context(), r.PathValue("eventID"), "")
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// GetEventMod godoc
// @Summary Get the moderator view of an event
// @Description Returns the event including hidden questions and the contact address. Requires the secret moderator token in the path.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID"
// @Param secret path string true "Moderator token"
// @Success 200 {object} helpers.APIResponse "data contains the moderator event view"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/event/{eventID}/mod/{secret} [get]
func (c *EventController) GetEventMod(w http.ResponseWriter, r *http.Request) {
	view, err := c.Service.GetEvent(r.Context(), r.PathValue("eventID"), r.PathValue("secret"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// AddQuestion godoc
// @Summary Submit a question
// @Description Adds an anonymous question to the event. No authentication required.
// @Tags questions
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID"
// @Param question body AddQuestionRequest true "Question text"
// @Success 201 {object} helpers.APIResponse "data contains the created question"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 429 {object} helpers.APIResponse "error.code: rate_limited"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/event/{eventID}/question [post]
func (c *EventController) AddQuestion(w http.ResponseWriter, r *http.Request) {
	var req AddQuestionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	eventID := r.PathValue("eventID")
	q, err := c.Service.AddQuestion(r.Context(), eventID, req.Text, c.fingerprint(r, eventID))
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, q)
}

// EditLike godoc
// @Summary Toggle a like on a question
// @Description Toggles the caller's like on a question. The caller is identified by a fingerprint derived from client metadata; a repeated call removes the like.
// @Tags questions
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID"
// @Param like body EditLikeRequest true "Question to toggle"
// @Success 200 {object} helpers.APIResponse "data contains liked flag and new count"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 429 {object} helpers.APIResponse "error.code: rate_limited"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/event/{eventID}/like [put]
func (c *EventController) EditLike(w http.ResponseWriter, r *http.Request) {
	var req EditLikeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	eventID := r.PathValue("eventID")
	res, err := c.Service.EditLike(r.Context(), eventID, req.QuestionID, c.fingerprint(r, eventID))
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, res)
}

// ModerateQuestion godoc
// @Summary Moderate a question
// @Description Applies a moderation action (hide, show, answer, delete) to a question. Requires the secret moderator token in the path. Deleting an already deleted question succeeds.
// @Tags questions
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID"
// @Param secret path string true "Moderator token"
// @Param questionID path string true "Question ID"
// @Param action body ModerateQuestionRequest true "Moderation action"
// @Success 200 {object} helpers.APIResponse "data is null on success"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/event/{eventID}/mod/{secret}/question/{questionID} [post]
func (c *EventController) ModerateQuestion(w http.ResponseWriter, r *http.Request) {
	var req ModerateQuestionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	err := c.Service.ModerateQuestion(r.Context(),
		r.PathValue("eventID"), r.PathValue("secret"), r.PathValue("questionID"),
		domain.ModerateAction(req.Action))
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nil)
}
