package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v3"

	"github.com/flowforge/workflowengine/cmd/flowrunner/stream"
	"github.com/flowforge/workflowengine/internal/executor"
	"github.com/flowforge/workflowengine/internal/patch"
	"github.com/flowforge/workflowengine/internal/types"
)

// Server exposes the engine over HTTP, in the same handlers/routes split
// style as the teacher's cmd/workflow-runner.
type Server struct {
	deps       *Dependencies
	hub        *stream.Hub
	logConsole types.LogConsoleFunc
}

// NewServer builds a Server. logConsole is the fan-out sink (live stream
// plus any optional audit sinks) every executed run reports through;
// hub additionally lets /ws subscribe clients to those same events.
func NewServer(deps *Dependencies, hub *stream.Hub, logConsole types.LogConsoleFunc) *Server {
	return &Server{deps: deps, hub: hub, logConsole: logConsole}
}

// executeRequest is the POST /executions body: a workflow definition plus
// optional run overrides. EnvironmentVariablesPatch and
// InitialBlockStatesPatch are RFC 7396 JSON-merge-patch documents applied
// on top of EnvironmentVariables/InitialBlockStates, letting a caller
// re-run a workflow with a small delta instead of resending the whole map.
type executeRequest struct {
	WorkflowID                string                   `json:"workflowId" yaml:"workflowId"`
	Workflow                  types.SerializedWorkflow `json:"workflow" yaml:"workflow"`
	EnvironmentVariables      map[string]string        `json:"environmentVariables,omitempty" yaml:"environmentVariables,omitempty"`
	InitialBlockStates        map[string]types.Output  `json:"initialBlockStates,omitempty" yaml:"initialBlockStates,omitempty"`
	EnvironmentVariablesPatch json.RawMessage          `json:"environmentVariablesPatch,omitempty" yaml:"environmentVariablesPatch,omitempty"`
	InitialBlockStatesPatch   json.RawMessage          `json:"initialBlockStatesPatch,omitempty" yaml:"initialBlockStatesPatch,omitempty"`
}

// HandleExecute runs a workflow synchronously and returns its
// ExecutionResult. POST /executions, body is YAML or JSON (Content-Type
// decides).
func (s *Server) HandleExecute(c echo.Context) error {
	var req executeRequest
	if c.Request().Header.Get("Content-Type") == "application/yaml" {
		if err := yaml.NewDecoder(c.Request().Body).Decode(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
	} else if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if req.WorkflowID == "" {
		req.WorkflowID = uuidString()
	}

	envVars, err := patch.ApplyEnvPatch(req.EnvironmentVariables, req.EnvironmentVariablesPatch)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	initialStates, err := patch.ApplyInitialStatePatch(req.InitialBlockStates, req.InitialBlockStatesPatch)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	opts := []executor.Option{
		executor.WithEnvironmentVariables(envVars),
		executor.WithInitialBlockStates(initialStates),
		executor.WithProviderRequest(s.deps.ProviderRequest),
		executor.WithGetTool(s.deps.GetTool),
		executor.WithToolExecute(s.deps.ToolExecute),
	}
	if s.logConsole != nil {
		opts = append(opts, executor.WithLogConsole(s.logConsole))
	}

	exec := executor.New(&req.Workflow, opts...)
	result := exec.Execute(c.Request().Context(), req.WorkflowID)

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	return c.JSON(status, result)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleStream upgrades to a websocket subscribed to one run's events.
// GET /ws?run_id=<workflowId>
func (s *Server) HandleStream(c echo.Context) error {
	runID := c.QueryParam("run_id")
	if runID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "run_id query parameter required"})
	}
	if s.hub == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "streaming not enabled"})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := stream.NewClient(s.hub, conn, runID)
	client.Register()
	go client.WritePump()
	go client.ReadPump()
	return nil
}
