package api

import (
	"net/http"
	"time"

	"mcpool/internal/session"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Time: time.Now().UTC()})
}

func (s *Server) handleGetCapabilities(c *gin.Context) {
	var req CapabilitiesRequest
	if !bindJSON(c, &req) {
		return
	}

	servers, err := s.resolveServers(req.ServerSelection)
	if err != nil {
		abortWithError(c, err)
		return
	}

	caps, err := s.opts.Manager.GetCapabilities(c.Request.Context(), servers, req.UserID, req.ProjectID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	fp, err := session.Fingerprint(servers)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if caps == nil {
		caps = []session.Capability{}
	}
	c.JSON(http.StatusOK, CapabilitiesResponse{Fingerprint: fp, Count: len(caps), Tools: caps})
}

func (s *Server) handleCallTool(c *gin.Context) {
	var req CallToolRequest
	if !bindJSON(c, &req) {
		return
	}

	servers, err := s.resolveServers(req.ServerSelection)
	if err != nil {
		abortWithError(c, err)
		return
	}

	result, err := s.opts.Manager.CallTool(c.Request.Context(), servers, req.Server, req.Tool, req.Arguments)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleRefresh(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	servers, err := s.resolveServers(req.ServerSelection)
	if err != nil {
		abortWithError(c, err)
		return
	}

	caps, err := s.opts.Manager.Refresh(c.Request.Context(), servers, req.Server)
	if err != nil {
		abortWithError(c, err)
		return
	}

	fp, err := session.Fingerprint(servers)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if caps == nil {
		caps = []session.Capability{}
	}
	c.JSON(http.StatusOK, CapabilitiesResponse{Fingerprint: fp, Count: len(caps), Tools: caps})
}

func (s *Server) handleListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, s.opts.Manager.ListContexts())
}

func (s *Server) handleCleanupSession(c *gin.Context) {
	removed := s.opts.Manager.CleanupSession(c.Param("userId"), c.Param("projectId"))
	c.JSON(http.StatusOK, CleanupResponse{Removed: removed})
}

func (s *Server) handleCleanupAll(c *gin.Context) {
	if err := s.opts.Manager.CleanupAll(c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListPools(c *gin.Context) {
	c.JSON(http.StatusOK, s.opts.Manager.ListPools())
}

func (s *Server) handleListProfiles(c *gin.Context) {
	names := s.opts.Profiles.Names()
	profiles := make([]ProfileInfo, 0, len(names))
	for _, name := range names {
		servers, _ := s.opts.Profiles.Lookup(name)
		fp, err := session.Fingerprint(servers)
		if err != nil {
			abortWithError(c, err)
			return
		}
		profiles = append(profiles, ProfileInfo{Name: name, Fingerprint: fp, Servers: servers.Names()})
	}
	c.JSON(http.StatusOK, profiles)
}
