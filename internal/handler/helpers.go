package handler

import (
	"bytes"
	"mime"
	"net/http"
	"strconv"

	"terraai/internal/domain/models"
	"terraai/internal/httputil"
	"terraai/internal/service/blueprint"
)

// requireUser returns the caller's user id, writing a 401 when the
// request is anonymous or carries an admin token.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims := httputil.GetClaims(r)
	if claims == nil || claims.IsAdmin() || claims.GetUserID() == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "user token required")
		return "", false
	}
	return claims.GetUserID(), true
}

// pathID reads the {id} path value, writing a 400 when it is missing.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := httputil.PathParam(r, "id")
	if err != nil {
		handleError(w, err)
		return "", false
	}
	return id, true
}

// respondArchive writes files as a zip download.
func respondArchive(w http.ResponseWriter, title string, files models.FileSet) {
	var buf bytes.Buffer
	if err := blueprint.WriteArchive(&buf, files); err != nil {
		handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": blueprint.ArchiveName(title),
	}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
