package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Skufu/heartform/internal/dropdown"
	"github.com/Skufu/heartform/internal/form"
	"github.com/Skufu/heartform/internal/pointer"
	"github.com/Skufu/heartform/internal/predict"
	"github.com/Skufu/heartform/internal/session"
)

type selectState struct {
	Open  bool   `json:"open"`
	Label string `json:"label"`
}

type stateResponse struct {
	predict.Snapshot
	Selects map[string]selectState `json:"selects"`
}

func (s *Server) handleIndex(c *gin.Context) {
	sess := s.session(c)
	c.HTML(http.StatusOK, "index.html", newPage(sess))
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, stateOf(s.session(c)))
}

func (s *Server) handleFields(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"features": form.Fields()})
}

func (s *Server) handlePredict(c *gin.Context) {
	sess := s.session(c)
	s.applyPostedFields(c, sess)
	sess.Pointer.Dispatch(pointer.Event{Target: "form/submit"})

	sess.Form.Submit(c.Request.Context())
	s.respond(c, sess)
}

func (s *Server) handleReset(c *gin.Context) {
	sess := s.session(c)
	sess.Pointer.Dispatch(pointer.Event{Target: "result/reset"})
	sess.Form.ResetPrediction()
	s.respond(c, sess)
}

func (s *Server) handleField(c *gin.Context) {
	sess := s.session(c)
	name := c.Param("name")
	if err := sess.Form.UpdateField(name, c.PostForm("value")); err != nil {
		s.fieldError(c, err)
		return
	}
	s.respond(c, sess)
}

func (s *Server) handleToggle(c *gin.Context) {
	sess := s.session(c)
	dd, ok := sess.Select(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown select field"})
		return
	}
	s.applyPostedFields(c, sess)
	sess.Pointer.Dispatch(pointer.Event{Target: dd.ID() + "/trigger"})

	dd.Toggle()
	s.respond(c, sess)
}

func (s *Server) handleSelect(c *gin.Context) {
	sess := s.session(c)
	dd, ok := sess.Select(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown select field"})
		return
	}
	code := c.Param("code")
	s.applyPostedFields(c, sess)
	sess.Pointer.Dispatch(pointer.Event{Target: dd.ID() + "/option/" + code})

	if err := dd.Select(code); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.respond(c, sess)
}

func (s *Server) handlePointer(c *gin.Context) {
	sess := s.session(c)
	sess.Pointer.Dispatch(pointer.Event{Target: c.PostForm("target")})
	s.respond(c, sess)
}

// applyPostedFields copies every catalog field present in the posted form
// into the session, so buttons inside the page form never lose typed values.
func (s *Server) applyPostedFields(c *gin.Context, sess *session.Session) {
	for _, f := range form.Fields() {
		v, ok := c.GetPostForm(f.Name)
		if !ok {
			continue
		}
		if err := sess.Form.UpdateField(f.Name, v); err != nil {
			s.logger.Printf("session %s: ignoring posted value: %v", sess.ID, err)
		}
	}
}

func (s *Server) fieldError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, form.ErrUnknownField):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// respond answers JSON clients with the session state and sends browsers
// back to the page.
func (s *Server) respond(c *gin.Context, sess *session.Session) {
	if wantsJSON(c) {
		c.JSON(http.StatusOK, stateOf(sess))
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

func stateOf(sess *session.Session) stateResponse {
	resp := stateResponse{
		Snapshot: sess.Form.Snapshot(),
		Selects:  make(map[string]selectState),
	}
	for _, dd := range sess.Selects() {
		resp.Selects[dd.Field()] = selectState{Open: dd.IsOpen(), Label: dd.Label()}
	}
	return resp
}

type fieldView struct {
	form.Field
	Value  string
	Select *selectView
}

type selectView struct {
	ID    string
	Open  bool
	Label string
	Items []dropdown.Item
}

type page struct {
	Fields            []fieldView
	Loading           bool
	Error             string
	Ready             bool
	Result            *predict.View
	AnimationDuration int64
}

func newPage(sess *session.Session) page {
	snap := sess.Form.Snapshot()
	p := page{
		Loading:           snap.Loading,
		Error:             snap.Error,
		Ready:             snap.Ready,
		AnimationDuration: dropdown.AnimationDuration.Milliseconds(),
	}
	for _, f := range form.Fields() {
		fv := fieldView{Field: f, Value: snap.Form[f.Name]}
		if dd, ok := sess.Select(f.Name); ok {
			fv.Select = &selectView{
				ID:    dd.ID(),
				Open:  dd.IsOpen(),
				Label: dd.Label(),
				Items: dd.Items(),
			}
		}
		p.Fields = append(p.Fields, fv)
	}
	if len(snap.Result) > 0 {
		view := predict.NewView(snap.Result)
		p.Result = &view
	}
	return p
}
