package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"chessink/internal/config"
	"chessink/internal/gamesync"
	"chessink/internal/input"
	"chessink/internal/lichess"
	"chessink/internal/llss"
	"chessink/internal/logging"
	"chessink/internal/render"
	"chessink/internal/storage"
)

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	Store    *storage.Store
	Proc     *input.Processor
	Sync     *gamesync.Synchronizer
	Lichess  *lichess.Client
	LLSS     *llss.Client
	Renderer *render.Renderer
	Cfg      config.Config
}

// NewHandler creates a new handler instance.
func NewHandler(store *storage.Store, proc *input.Processor, sync *gamesync.Synchronizer,
	lc *lichess.Client, display *llss.Client, renderer *render.Renderer, cfg config.Config) *Handler {
	return &Handler{
		Store:    store,
		Proc:     proc,
		Sync:     sync,
		Lichess:  lc,
		LLSS:     display,
		Renderer: renderer,
		Cfg:      cfg,
	}
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type instanceCreateRequest struct {
	InstanceID string `json:"instance_id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Callbacks  struct {
		Frames string `json:"frames"`
		Inputs string `json:"inputs"`
		Notify string `json:"notify"`
	} `json:"callbacks"`
	Display struct {
		Width    int `json:"width"`
		Height   int `json:"height"`
		BitDepth int `json:"bit_depth"`
	} `json:"display"`
}

// HandleInstances registers or refreshes an instance (the display-service
// handshake).
func (h *Handler) HandleInstances(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	var req instanceCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.InstanceID == "" {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "bad json"})
		return
	}

	ctx := r.Context()
	inst, err := h.Store.InstanceByLLSSID(ctx, req.InstanceID)
	if err != nil {
		if err != storage.ErrNotFound {
			WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "storage failure"})
			return
		}
		inst = &storage.Instance{
			LLSSInstanceID: req.InstanceID,
			InstanceType:   "chess",
			CurrentScreen:  storage.ScreenSetup,
		}
	}
	if req.Name != "" {
		inst.Name = req.Name
	}
	inst.CallbackFrames = req.Callbacks.Frames
	inst.CallbackInputs = req.Callbacks.Inputs
	inst.CallbackNotify = req.Callbacks.Notify
	if req.Display.Width > 0 {
		inst.DisplayWidth = req.Display.Width
	} else if inst.DisplayWidth == 0 {
		inst.DisplayWidth = h.Cfg.DisplayWidth
	}
	if req.Display.Height > 0 {
		inst.DisplayHeight = req.Display.Height
	} else if inst.DisplayHeight == 0 {
		inst.DisplayHeight = h.Cfg.DisplayHeight
	}
	if req.Display.BitDepth > 0 {
		inst.DisplayBitDepth = req.Display.BitDepth
	} else if inst.DisplayBitDepth == 0 {
		inst.DisplayBitDepth = h.Cfg.DisplayBitDepth
	}
	inst.Initialized = true

	if err := h.Store.SaveInstance(ctx, inst); err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "storage failure"})
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{
		"id":                  inst.ID,
		"instance_id":         inst.LLSSInstanceID,
		"needs_configuration": inst.NeedsConfiguration,
	})
}

// HandleInstance dispatches /instances/{llssID}/{action}.
func (h *Handler) HandleInstance(w http.ResponseWriter, r *http.Request) {
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/instances/"), "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		WriteJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
		return
	}
	llssID, action := parts[0], parts[1]

	switch {
	case action == "inputs" && r.Method == http.MethodPost:
		h.handleInput(w, r, llssID)
	case action == "status" && r.Method == http.MethodGet:
		h.handleStatus(w, r, llssID)
	case action == "render" && r.Method == http.MethodPost:
		h.handleForceRender(w, r, llssID)
	case action == "account" && r.Method == http.MethodPost:
		h.handleLinkAccount(w, r, llssID)
	default:
		WriteJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
	}
}

type inputEventRequest struct {
	Button    string    `json:"button"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// handleInput records a button event, runs the processor synchronously and
// schedules a background render when visible state changed.
func (h *Handler) handleInput(w http.ResponseWriter, r *http.Request, llssID string) {
	var req inputEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "bad json"})
		return
	}
	button := input.Button(req.Button)
	if !input.ValidButton(button) {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "unknown button"})
		return
	}
	eventType := input.EventType(req.EventType)
	switch eventType {
	case input.Press, input.LongPress, input.Release:
	case "":
		eventType = input.Press
	default:
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "unknown event type"})
		return
	}

	ctx := r.Context()
	inst, err := h.Store.InstanceByLLSSID(ctx, llssID)
	if err != nil {
		WriteJSON(w, http.StatusNotFound, map[string]any{"error": "instance not found"})
		return
	}

	when := req.Timestamp
	if when.IsZero() {
		when = time.Now().UTC()
	}
	event := &storage.InputEvent{
		Button:         string(button),
		EventType:      string(eventType),
		EventTimestamp: when,
	}
	if err := h.Store.RecordInput(ctx, event); err != nil {
		logging.WithInstance(llssID).WithError(err).Warn("record input event")
	}
	logging.WithInstance(llssID).
		WithField("button", string(button)).
		WithField("type", string(eventType)).
		WithField("ip", ClientIP(r)).
		Debug("input received")

	changed, message := h.Proc.ProcessEvent(ctx, inst, button, eventType)

	if event.ID != uuid.Nil {
		if err := h.Store.MarkInputProcessed(ctx, event.ID, time.Now().UTC()); err != nil {
			logging.WithInstance(llssID).WithError(err).Warn("mark input processed")
		}
	}

	if changed {
		go h.renderAndSubmit(inst.ID)
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"status":        "processed",
		"state_changed": changed,
		"error":         emptyToNil(message),
	})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request, llssID string) {
	inst, err := h.Store.InstanceByLLSSID(r.Context(), llssID)
	if err != nil {
		WriteJSON(w, http.StatusNotFound, map[string]any{"error": "instance not found"})
		return
	}
	active := string(inst.CurrentScreen)
	if inst.CurrentGameID != nil {
		active = "game_" + inst.CurrentGameID.String()
	}
	var configURL any
	if inst.NeedsConfiguration {
		configURL = inst.ConfigurationURL
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"instance_id":         llssID,
		"ready":               inst.Ready,
		"needs_configuration": inst.NeedsConfiguration,
		"configuration_url":   configURL,
		"active_screen":       active,
	})
}

func (h *Handler) handleForceRender(w http.ResponseWriter, r *http.Request, llssID string) {
	inst, err := h.Store.InstanceByLLSSID(r.Context(), llssID)
	if err != nil {
		WriteJSON(w, http.StatusNotFound, map[string]any{"error": "instance not found"})
		return
	}
	go h.renderAndSubmit(inst.ID)
	WriteJSON(w, http.StatusAccepted, map[string]any{"status": "render scheduled"})
}

type linkAccountRequest struct {
	AccountID string `json:"account_id"`
}

// handleLinkAccount binds a configured Lichess account to the instance and
// moves it off the setup screen.
func (h *Handler) handleLinkAccount(w http.ResponseWriter, r *http.Request, llssID string) {
	var req linkAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "bad json"})
		return
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "bad account id"})
		return
	}

	ctx := r.Context()
	inst, err := h.Store.InstanceByLLSSID(ctx, llssID)
	if err != nil {
		WriteJSON(w, http.StatusNotFound, map[string]any{"error": "instance not found"})
		return
	}
	account, err := h.Store.Account(ctx, accountID)
	if err != nil {
		WriteJSON(w, http.StatusNotFound, map[string]any{"error": "account not found"})
		return
	}

	inst.LinkedAccountID = &account.ID
	inst.NeedsConfiguration = false
	inst.Ready = true
	inst.CurrentScreen = storage.ScreenNewMatch
	inst.CurrentGameID = nil
	if err := h.Store.SaveInstance(ctx, inst); err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "storage failure"})
		return
	}

	go h.renderAndSubmit(inst.ID)
	WriteJSON(w, http.StatusOK, map[string]any{"status": "linked", "account": account.Username})
}

type accountCreateRequest struct {
	APIToken string `json:"api_token"`
}

// HandleAccounts creates (POST) or lists (GET) Lichess accounts. Creation
// validates the token against Lichess and takes the username from there.
func (h *Handler) HandleAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req accountCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.APIToken == "" {
			WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "bad json"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		profile, err := h.Lichess.GetAccount(ctx, req.APIToken)
		if err != nil {
			WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "token rejected by lichess"})
			return
		}
		account := &storage.Account{
			Username: profile.Username,
			APIToken: req.APIToken,
			Enabled:  true,
		}
		if err := h.Store.CreateAccount(ctx, account); err != nil {
			WriteJSON(w, http.StatusConflict, map[string]any{"error": "account already exists"})
			return
		}
		go func() {
			bg, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := h.Sync.SyncAdversaries(bg, account); err != nil {
				logging.Log.WithError(err).Debug("initial adversary sync failed")
			}
		}()
		WriteJSON(w, http.StatusCreated, map[string]any{"id": account.ID, "username": account.Username})

	case http.MethodGet:
		accounts, err := h.Store.Accounts(r.Context())
		if err != nil {
			WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "storage failure"})
			return
		}
		out := make([]map[string]any, 0, len(accounts))
		for _, a := range accounts {
			out = append(out, map[string]any{
				"id":       a.ID,
				"username": a.Username,
				"enabled":  a.Enabled,
			})
		}
		WriteJSON(w, http.StatusOK, out)

	default:
		WriteJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
	}
}

func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
