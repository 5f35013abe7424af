// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// the expense form with its optional photo, credentials and category input.

package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"expensetracker/internal/core"
	"expensetracker/internal/services"
)

// formOverhead is the room left for text fields on top of the photo limit.
const formOverhead = 1 << 20

// Form field names shared with the templates.
const (
	fieldDescription = "description"
	fieldAmount      = "amount"
	fieldCategoryID  = "category_id"
	fieldPhoto       = "photo"
	fieldName        = "name"
	fieldColor       = "color"
	fieldEmail       = "email"
	fieldPassword    = "password"
	fieldConfirm     = "confirm_password"
)

// ParseExpenseForm reads the expense form. The photo part is optional; when
// present it must be an image no larger than maxPhotoBytes.
func ParseExpenseForm(w http.ResponseWriter, r *http.Request, maxPhotoBytes int64) (*services.ExpenseForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes+formOverhead)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxPhotoBytes + formOverhead); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				return nil, core.ErrPhotoTooLarge
			}
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}

	form := &services.ExpenseForm{
		Description: sanitizeInput(r.FormValue(fieldDescription)),
		Amount:      strings.TrimSpace(r.FormValue(fieldAmount)),
		CategoryID:  sanitizeInput(r.FormValue(fieldCategoryID)),
	}

	if r.MultipartForm == nil {
		return form, nil
	}
	file, header, err := r.FormFile(fieldPhoto)
	if errors.Is(err, http.ErrMissingFile) {
		return form, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read photo part: %w", err)
	}
	defer file.Close()

	photo, err := readPhoto(file, header, maxPhotoBytes)
	if err != nil {
		return nil, err
	}
	form.Photo = photo
	return form, nil
}

// readPhoto loads and sniffs one uploaded file. An empty part, which browsers
// send when no file was picked, yields a nil photo.
func readPhoto(file multipart.File, header *multipart.FileHeader, maxBytes int64) (*core.Photo, error) {
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	if int64(len(data)) > maxBytes {
		return nil, core.ErrPhotoTooLarge
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, core.ErrInvalidPhoto
	}

	return &core.Photo{
		Name:        filepath.Base(header.Filename),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// Credentials is the content of the login and register forms.
type Credentials struct {
	Email    string
	Password string
	Confirm  string
}

// ParseCredentials reads the auth form. Passwords are taken verbatim.
func ParseCredentials(r *http.Request) (Credentials, error) {
	if err := r.ParseForm(); err != nil {
		return Credentials{}, fmt.Errorf("parse form: %w", err)
	}
	return Credentials{
		Email:    sanitizeInput(r.PostFormValue(fieldEmail)),
		Password: r.PostFormValue(fieldPassword),
		Confirm:  r.PostFormValue(fieldConfirm),
	}, nil
}

// ParseCategoryForm returns the trimmed name and color of a new category.
func ParseCategoryForm(r *http.Request) (name, color string, err error) {
	if err := r.ParseForm(); err != nil {
		return "", "", fmt.Errorf("parse form: %w", err)
	}
	return sanitizeInput(r.PostFormValue(fieldName)), sanitizeInput(r.PostFormValue(fieldColor)), nil
}
