package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"dispute-arbiter/internal/arbitration"
	"dispute-arbiter/internal/dispute"
	"dispute-arbiter/internal/store"
)

const serviceName = "Dispute Arbitration API"

// Config defines server dependencies.
type Config struct {
	Engine         *arbitration.Engine
	Store          *store.Database
	AllowedOrigins []string
}

// Server wires HTTP handlers with the arbitration engine and verdict history.
type Server struct {
	engine         *arbitration.Engine
	db             *store.Database
	allowedOrigins []string
	notifier       *VerdictNotifier
}

var errHistoryDisabled = errors.New("verdict history is disabled")

// NewServer constructs the API server. The store is optional.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, errors.New("arbitration engine required")
	}
	if cfg.Store == nil {
		logrus.Info("verdict history disabled - no store configured")
	}
	return &Server{
		engine:         cfg.Engine,
		db:             cfg.Store,
		allowedOrigins: cfg.AllowedOrigins,
		notifier:       NewVerdictNotifier(),
	}, nil
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowCredentials = true
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", requestIDHeader}
	corsCfg.ExposeHeaders = []string{requestIDHeader}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))
	r.Use(requestID())

	r.GET("/health", s.handleHealth)
	r.GET("/api/healthz", s.handleHealth)

	api := r.Group("/api/dispute")
	{
		api.POST("/analyze", s.handleAnalyze)
		api.GET("/types", s.handleTypes)
		api.GET("/cases", s.handleListCases)
		api.GET("/cases/:caseID", s.handleGetCase)
		api.GET("/stats", s.handleStats)
		api.GET("/stream", s.handleStream)
	}

	return r, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   serviceName,
		History:   s.db != nil,
		Timestamp: time.Now(),
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req dispute.Case
	if err := c.ShouldBindJSON(&req); err != nil {
		// Field-level problems decode to zero values; only a body that is missing or
		// not a JSON object ends up here.
		if errors.Is(err, io.EOF) {
			s.renderError(c, http.StatusBadRequest, errors.New("request body is required"))
			return
		}
		s.renderError(c, http.StatusBadRequest, err)
		return
	}

	log := logrus.WithFields(logrus.Fields{
		"request_id":   c.GetString(requestIDKey),
		"dispute_type": req.DisputeType,
	})
	if req.DisputeType != "" && !req.DisputeType.Valid() {
		log.Warn("unknown dispute type, default rule applies")
	}
	log.Info("dispute arbitration requested")

	start := time.Now()
	verdict := s.engine.Arbitrate(c.Request.Context(), req)
	elapsed := time.Since(start)

	s.persist(c, req, verdict, elapsed)
	s.notifier.Broadcast(VerdictEvent{Type: "verdict", Verdict: &verdict})

	log.WithFields(logrus.Fields{
		"case_id":        verdict.CaseID,
		"responsibility": verdict.Responsibility,
		"resolution":     verdict.Resolution,
		"confidence":     verdict.Confidence,
		"duration":       elapsed,
	}).Info("dispute arbitration completed")

	c.JSON(http.StatusOK, verdict)
}

// persist records the verdict. Failures are logged and never change the response.
func (s *Server) persist(c *gin.Context, req dispute.Case, verdict arbitration.Verdict, elapsed time.Duration) {
	if s.db == nil {
		return
	}
	record := RecordFromVerdict(verdict, req, c.GetString(requestIDKey), elapsed)
	if err := s.db.SaveVerdict(record); err != nil {
		logrus.WithError(err).WithField("case_id", verdict.CaseID).Warn("persist verdict")
	}
}

func (s *Server) handleTypes(c *gin.Context) {
	c.JSON(http.StatusOK, TypesResponse{DisputeTypes: dispute.DisputeTypes()})
}

func (s *Server) handleListCases(c *gin.Context) {
	if s.db == nil {
		s.renderError(c, http.StatusServiceUnavailable, errHistoryDisabled)
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 0 {
		page = 0
	}
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	if pageSize <= 0 {
		pageSize = 25
	}
	if pageSize > 200 {
		pageSize = 200
	}

	rows, total, err := s.db.ListVerdicts(store.VerdictQuery{
		Responsibility: strings.TrimSpace(c.Query("responsibility")),
		DisputeType:    strings.TrimSpace(c.Query("dispute_type")),
		Offset:         page * pageSize,
		Limit:          pageSize,
	})
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	items := make([]CaseDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, CaseFromRecord(row))
	}
	c.JSON(http.StatusOK, CasesResponse{Items: items, Total: total})
}

func (s *Server) handleGetCase(c *gin.Context) {
	if s.db == nil {
		s.renderError(c, http.StatusServiceUnavailable, errHistoryDisabled)
		return
	}
	caseID := strings.TrimSpace(c.Param("caseID"))
	record, err := s.db.LatestVerdict(caseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.renderError(c, http.StatusNotFound, errors.New("case "+caseID+" not found"))
		} else {
			s.renderError(c, http.StatusInternalServerError, err)
		}
		return
	}
	c.JSON(http.StatusOK, CaseFromRecord(*record))
}

func (s *Server) handleStats(c *gin.Context) {
	if s.db == nil {
		s.renderError(c, http.StatusServiceUnavailable, errHistoryDisabled)
		return
	}
	counts, err := s.db.CountByResponsibility()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, StatsResponse{
		Responsibilities: counts,
		Tuning:           s.engine.Tuning(),
		StreamClients:    s.notifier.Clients(),
	})
}

func (s *Server) handleStream(c *gin.Context) {
	upgrader := websocket.Upgrader{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: true,
		CheckOrigin: func(r *http.Request) bool {
			if len(s.allowedOrigins) == 0 {
				return true
			}
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			for _, allowed := range s.allowedOrigins {
				if strings.EqualFold(origin, allowed) {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("upgrade websocket")
		return
	}

	client := s.notifier.Register(conn)
	logrus.WithField("remote", conn.RemoteAddr().String()).Info("verdict websocket connected")
	defer s.notifier.Unregister(client)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("remote", conn.RemoteAddr().String()).Info("verdict websocket closed")
			} else {
				logrus.WithError(err).Warn("verdict websocket unexpected close")
			}
			break
		}
	}
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}
