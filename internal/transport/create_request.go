package transport

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"halal-directory/internal/media"
	"halal-directory/internal/middleware"

	"go.uber.org/zap"
)

// multipartOverhead leaves room for text fields alongside a maximum-size image
const multipartOverhead = 1 << 20

// decodeCreate reads a create request and an optional image. It writes the
// error response itself and reports false when the request is rejected.
func (h *ServiceHandler) decodeCreate(w http.ResponseWriter, r *http.Request) (CreateServiceRequest, []byte, bool) {
	var (
		req   CreateServiceRequest
		image []byte
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		var errs []middleware.ValidationError
		var err error
		req, image, errs, err = readMultipartCreate(w, r)
		if err != nil {
			h.logger.Debug("Multipart create rejected", zap.Error(err))
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				middleware.RespondWithFieldError(w, "image", "Image must be 5 MiB or smaller")
				return req, nil, false
			}
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
			return req, nil, false
		}
		if len(errs) > 0 {
			middleware.RespondWithValidationErrors(w, errs)
			return req, nil, false
		}
		if err := middleware.ValidateRequest(&req); err != nil {
			respondDecodeError(w, err)
			return req, nil, false
		}
	} else if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Create validation failed", zap.Error(err))
		respondDecodeError(w, err)
		return req, nil, false
	}

	return req, image, true
}

// readMultipartCreate parses form fields into a create request. Field-level
// parse failures are returned as validation errors, transport failures as err.
func readMultipartCreate(w http.ResponseWriter, r *http.Request) (CreateServiceRequest, []byte, []middleware.ValidationError, error) {
	var req CreateServiceRequest

	r.Body = http.MaxBytesReader(w, r.Body, media.MaxImageBytes+multipartOverhead)
	if err := r.ParseMultipartForm(media.MaxImageBytes + multipartOverhead); err != nil {
		return req, nil, nil, err
	}
	defer r.MultipartForm.RemoveAll()

	var errs []middleware.ValidationError
	fieldErr := func(field, msg string) {
		errs = append(errs, middleware.ValidationError{Field: field, Message: msg})
	}

	form := r.MultipartForm.Value
	get := func(key string) string {
		if v := form[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}
	optional := func(key string) *string {
		if v := get(key); v != "" {
			return &v
		}
		return nil
	}

	req.Name = get("name")
	req.Description = get("description")
	req.StreetAddress = get("streetAddress")
	req.City = get("city")
	req.State = get("state")
	req.PostalCode = get("postalCode")
	req.Country = get("country")
	req.PhoneNumber = get("phoneNumber")
	req.Website = optional("website")
	req.Email = optional("email")

	if raw := get("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fieldErr("categoryId", "Must be an integer")
		}
		req.CategoryID = id
	}

	if raw := get("isHalalCertified"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			fieldErr("isHalalCertified", "Must be true or false")
		}
		req.IsHalalCertified = v
	}

	if raw := get("hours"); raw != "" {
		req.Hours = formHours(raw)
	}

	image, err := readImage(r)
	if err != nil {
		switch {
		case errors.Is(err, media.ErrImageTooLarge):
			fieldErr("image", "Image must be 5 MiB or smaller")
		case errors.Is(err, media.ErrUnsupportedImage):
			fieldErr("image", "Image must be a JPEG, PNG, GIF or WebP file")
		default:
			return req, nil, nil, err
		}
	}

	return req, image, errs, nil
}

// formHours accepts either a JSON value or free text, which is stored as a JSON string
func formHours(raw string) json.RawMessage {
	if json.Valid([]byte(raw)) {
		return json.RawMessage(raw)
	}
	encoded, _ := json.Marshal(raw)
	return encoded
}

// readImage returns the "image" part, or nil when none was sent
func readImage(r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, media.MaxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	if _, err := media.DetectContentType(data); err != nil {
		return nil, err
	}
	return data, nil
}
