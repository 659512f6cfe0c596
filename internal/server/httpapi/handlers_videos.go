package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/avelins/cliptube/internal/common"
	"github.com/avelins/cliptube/internal/server/services"
)

// handlePublishVideo uploads the video file and thumbnail from a multipart
// form and creates the video record owned by the caller.
func (s *Server) handlePublishVideo(w http.ResponseWriter, r *http.Request) {

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, fmt.Errorf("%w: expected multipart form", common.ErrorBadRequest))
		return
	}

	params := services.PublishParams{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}
	if v := r.FormValue("duration"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, fmt.Errorf("%w: invalid duration", common.ErrorBadRequest))
			return
		}
		params.Duration = d
	}

	videoFile, videoHeader, err := r.FormFile("videoFile")
	if err != nil {
		writeError(w, fmt.Errorf("%w: video file is required", common.ErrorBadRequest))
		return
	}
	defer videoFile.Close()
	params.VideoFilename = videoHeader.Filename
	params.VideoBody = videoFile
	params.VideoContentType = partContentType(videoHeader)

	thumb, thumbHeader, err := r.FormFile("thumbnail")
	if err != nil {
		writeError(w, fmt.Errorf("%w: thumbnail file is required", common.ErrorBadRequest))
		return
	}
	defer thumb.Close()
	params.ThumbnailFilename = thumbHeader.Filename
	params.ThumbnailBody = thumb
	params.ThumbnailContentType = partContentType(thumbHeader)

	user := userFrom(r.Context())

	video, err := s.videos.Publish(r.Context(), user.ID, params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, video, "video published successfully")
}

func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {

	id := r.PathValue("id")
	if id == "" {
		writeError(w, fmt.Errorf("%w: video id is required", common.ErrorBadRequest))
		return
	}

	video, err := s.videos.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, video, "video fetched successfully")
}

func (s *Server) handleListOwnVideos(w http.ResponseWriter, r *http.Request) {

	user := userFrom(r.Context())

	videos, err := s.videos.ListByOwner(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, videos, "videos fetched successfully")
}
