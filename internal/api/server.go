// Package api exposes an opened GLF log over a small read-only HTTP
// surface, for browsing record metadata and rendered frames.
package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/benthiclabs/glf/internal/render"
	"github.com/benthiclabs/glf/pkg/glf"
)

// FrameIDHeader carries a fresh id per rendered frame response, so
// clients pulling many frames can correlate downloads with their logs.
const FrameIDHeader = "X-Glf-Frame-Id"

// Server serves one opened document. The document is read-only, so a
// single instance is safe for concurrent requests.
type Server struct {
	doc     *glf.Document
	name    string
	palette render.Palette
}

func NewServer(doc *glf.Document, name string, palette render.Palette) *Server {
	return &Server{doc: doc, name: name, palette: palette}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/container", s.handleContainer)
	e.GET("/v1/records", s.handleListRecords)
	e.GET("/v1/records/:idx", s.handleGetRecord)
	e.GET("/v1/records/:idx/image.png", s.handleGetImage)
	e.GET("/v1/statuses", s.handleListStatuses)
}

func (s *Server) handleContainer(c *echo.Context) error {
	h := s.doc.Container
	return writeJSON(c, http.StatusOK, ContainerInfo{
		Name:        s.name,
		Zipped:      h.Zipped,
		Version:     h.Version,
		RecordCount: h.RecordCount,
		StatusCount: h.StatusCount,
		DatSize:     h.DatSize,
	})
}

func (s *Server) handleListRecords(c *echo.Context) error {
	out := make([]RecordSummary, 0, s.doc.RecordCount())
	for i := 0; i < s.doc.RecordCount(); i++ {
		rec, err := s.doc.Header(i)
		if err != nil {
			return writeServerError(c, err)
		}
		out = append(out, summarize(i, rec))
	}
	return writeJSON(c, http.StatusOK, out)
}

func (s *Server) handleGetRecord(c *echo.Context) error {
	idx, ok := recordIndex(c)
	if !ok {
		return writeBadRequest(c, "idx must be a non-negative integer")
	}
	rec, err := s.doc.Header(idx)
	if err != nil {
		if errors.Is(err, glf.ErrIndexOutOfRange) {
			return writeNotFound(c, err.Error())
		}
		return writeServerError(c, err)
	}
	return writeJSON(c, http.StatusOK, RecordDetail{
		RecordSummary:       summarize(idx, rec),
		NodeID:              rec.Header.NodeID,
		ImageVersion:        rec.ImageVersion,
		Compression:         rec.Compression.String(),
		RangeStart:          rec.RangeStart,
		RangeEnd:            rec.RangeEnd,
		BearingStart:        rec.BearingStart,
		BearingEnd:          rec.BearingEnd,
		StateFlags:          rec.StateFlags,
		ModulationFrequency: rec.ModulationFrequency,
		PingFlags:           rec.PingFlags,
		SoundSpeed:          rec.SoundSpeed,
		PercentGain:         rec.PercentGain,
		Chirp:               rec.Chirp,
		SonarType:           rec.SonarType,
		Platform:            rec.Platform,
		DataSize:            rec.DataSize,
		RecordSize:          rec.RecordSize,
		TxTime:              rec.TxTime(),
	})
}

func (s *Server) handleGetImage(c *echo.Context) error {
	idx, ok := recordIndex(c)
	if !ok {
		return writeBadRequest(c, "idx must be a non-negative integer")
	}
	img, err := s.doc.ExtractImage(idx)
	if err != nil {
		switch {
		case errors.Is(err, glf.ErrIndexOutOfRange):
			return writeNotFound(c, err.Error())
		case errors.Is(err, glf.ErrDecompression),
			errors.Is(err, glf.ErrSizeMismatch),
			errors.Is(err, glf.ErrGeometryMismatch):
			// The record is corrupt but the document is fine.
			return writeError(c, http.StatusUnprocessableEntity, "corrupt_record", err.Error())
		default:
			return writeServerError(c, err)
		}
	}

	var buf bytes.Buffer
	if err := render.Encode(&buf, render.Apply(img, s.palette), "png"); err != nil {
		return writeServerError(c, err)
	}
	c.Response().Header().Set(FrameIDHeader, "frame_"+uuid.NewString())
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleListStatuses(c *echo.Context) error {
	out := make([]StatusSummary, 0, s.doc.StatusCount())
	for i := 0; i < s.doc.StatusCount(); i++ {
		st, err := s.doc.Status(i)
		if err != nil {
			return writeServerError(c, err)
		}
		out = append(out, StatusSummary{
			Index:           i,
			Time:            st.Header.Time(),
			DeviceID:        st.DeviceID,
			PSUTemp:         st.PSUTemp,
			DieTemp:         st.DieTemp,
			TransducerTemp:  st.TransducerTemp,
			LinkQuality:     st.LinkQuality,
			PacketCount:     st.PacketCount,
			RecvErrorCount:  st.RecvErrorCount,
			ShutdownStatus:  st.ShutdownStatus,
			NetAdapterFound: st.NetAdapterFound,
		})
	}
	return writeJSON(c, http.StatusOK, out)
}

func summarize(i int, rec *glf.ImageRecord) RecordSummary {
	return RecordSummary{
		Index:    i,
		Time:     rec.Header.Time(),
		DeviceID: rec.Header.DeviceID,
		Width:    rec.Width,
		Height:   rec.Height,
	}
}

func recordIndex(c *echo.Context) (int, bool) {
	idx, err := strconv.Atoi(c.Param("idx"))
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}
