package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/architeacher/netinventory/internal/domain/model"
	"github.com/architeacher/netinventory/internal/usecases"
	"github.com/architeacher/netinventory/internal/usecases/commands"
	"github.com/architeacher/netinventory/internal/usecases/queries"
	"github.com/architeacher/netinventory/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const DeviceIDParam = "deviceID"

type (
	CreateDeviceRequest struct {
		IP          *string  `json:"ip"`
		Name        *string  `json:"name"`
		TrafficRate *float64 `json:"traffic_rate"`
	}

	DeviceResponse struct {
		ID          int64   `json:"id"`
		IP          string  `json:"ip"`
		Name        string  `json:"name"`
		TrafficRate float64 `json:"traffic_rate"`
	}

	DeviceHandler struct {
		app          *usecases.Application
		logger       logger.Logger
		maxBodyBytes int64
	}
)

func NewDeviceHandler(app *usecases.Application, log logger.Logger, maxBodyBytes int64) *DeviceHandler {
	return &DeviceHandler{
		app:          app,
		logger:       log,
		maxBodyBytes: maxBodyBytes,
	}
}

func (h *DeviceHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.app.Queries.ListDevices.Execute(r.Context(), queries.ListDevicesQuery{})
	if err != nil {
		h.writeStorageError(w, r, err)

		return
	}

	response := make([]DeviceResponse, 0, len(devices))
	for _, device := range devices {
		response = append(response, toDeviceResponse(device))
	}

	writeJSONResponse(w, http.StatusOK, response)
}

func (h *DeviceHandler) CreateDevice(w http.ResponseWriter, r *http.Request) {
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	var req CreateDeviceRequest

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		h.writeDecodeError(w, err)

		return
	}

	// exactly one JSON value per body
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeErrorResponse(w, http.StatusBadRequest, codeInvalidJSON, msgInvalidRequestBody)

		return
	}

	cmd := commands.CreateDeviceCommand{
		Input: model.DeviceInput{
			IP:          req.IP,
			Name:        req.Name,
			TrafficRate: req.TrafficRate,
		},
	}

	device, err := h.app.Commands.CreateDevice.Handle(r.Context(), cmd)
	if err != nil {
		var validationErrs *model.ValidationErrors
		if errors.As(err, &validationErrs) {
			log := h.logger.WithContext(r.Context())
			log.Debug().Strs("fields", validationErrs.Fields()).Msg("rejected device payload")

			writeValidationErrorResponse(w, validationErrs)

			return
		}

		h.writeStorageError(w, r, err)

		return
	}

	writeJSONResponse(w, http.StatusCreated, toDeviceResponse(device))
}

func (h *DeviceHandler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseDeviceID(chi.URLParam(r, DeviceIDParam))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, codeInvalidID, msgInvalidDeviceID)

		return
	}

	_, err = h.app.Commands.DeleteDevice.Handle(r.Context(), commands.DeleteDeviceCommand{ID: id})
	if err != nil {
		if errors.Is(err, model.ErrDeviceNotFound) {
			writeErrorResponse(w, http.StatusNotFound, codeNotFound, msgDeviceNotFound)

			return
		}

		h.writeStorageError(w, r, err)

		return
	}

	writeJSONResponse(w, http.StatusOK, MessageResponse{Message: msgDeviceDeleted})
}

func (h *DeviceHandler) writeDecodeError(w http.ResponseWriter, err error) {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		errs := model.NewValidationErrors()
		errs.Add(typeErr.Field, typeErr.Field+" must be a "+typeErr.Type.String(), "INVALID_TYPE")
		writeValidationErrorResponse(w, errs)

		return
	}

	writeErrorResponse(w, http.StatusBadRequest, codeInvalidJSON, msgInvalidRequestBody)
}

// writeStorageError reports the underlying storage message to the caller.
func (h *DeviceHandler) writeStorageError(w http.ResponseWriter, r *http.Request, err error) {
	log := h.logger.WithContext(r.Context())
	log.Error().Err(err).Str("path", r.URL.Path).Msg("storage operation failed")

	writeErrorResponse(w, http.StatusInternalServerError, codeInternalError, err.Error())
}

func toDeviceResponse(device *model.Device) DeviceResponse {
	return DeviceResponse{
		ID:          device.ID.Int64(),
		IP:          device.IP,
		Name:        device.Name,
		TrafficRate: device.TrafficRate,
	}
}
