package server

import (
	"ctchen222/tictactoe-solo/internal/api/controller"
	"ctchen222/tictactoe-solo/internal/api/response"
	"ctchen222/tictactoe-solo/internal/hub"
	"ctchen222/tictactoe-solo/internal/hub/types"
	"ctchen222/tictactoe-solo/internal/player"
	"ctchen222/tictactoe-solo/internal/repository"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

//go:embed web
var webFS embed.FS

type Server struct {
	hub      *hub.Hub
	rooms    *controller.RoomController
	upgrader websocket.Upgrader
	engine   *gin.Engine
}

func NewServer(h *hub.Hub, rooms *controller.RoomController) *Server {
	s := &Server{
		hub:   h,
		rooms: rooms,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	s.engine = s.newEngine()
	return s
}

// Engine returns the configured gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), traceRequests(), logRequests())
	r.SetHTMLTemplate(template.Must(template.ParseFS(webFS, "web/*.tmpl")))

	r.GET("/", s.handlePage)
	r.POST("/rooms/:id/cells/:cell", s.handleCellForm)
	r.POST("/rooms/:id/restart", s.handleRestartForm)
	r.GET("/ws", s.handleWebSocket)
	r.GET("/healthz", func(c *gin.Context) {
		response.SuccessResponse(c, gin.H{"status": "ok"})
	})

	api := r.Group("/api/rooms")
	api.POST("", s.rooms.Create)
	api.GET("/:id", s.rooms.Get)
	api.POST("/:id/moves", s.rooms.Move)
	api.POST("/:id/restart", s.rooms.Restart)

	return r
}

// handleWebSocket's only responsibility is to upgrade the connection and
// pass a registration request to the hub.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.String()),
		attribute.String("http.method", c.Request.Method),
	))
	defer span.End()

	roomID := c.Query("room")
	span.SetAttributes(attribute.String("room.id", roomID))
	if _, err := s.hub.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			response.AbortWithError(c, response.ErrRoomNotFound)
		} else {
			response.AbortWithError(c, err)
		}
		span.SetStatus(codes.Error, "Unknown room")
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.WarnContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	playerID := uuid.New().String()
	span.SetAttributes(attribute.String("player.id", playerID))

	s.hub.Register() <- &types.RegistrationRequest{
		Player: player.NewPlayer(playerID, conn),
		RoomID: roomID,
		Ctx:    ctx,
	}
}

// traceRequests starts a server span per request, continuing any trace the
// caller propagated.
func traceRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+c.FullPath(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", c.FullPath()),
			))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

func logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.DebugContext(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
