package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mmlnetwork/mmlpack/internal/auth"
	"github.com/mmlnetwork/mmlpack/internal/game"
	"github.com/mmlnetwork/mmlpack/internal/pack"
)

const (
	headerAuthorization = "Authorization"
	headerXAPIKey       = "X-API-Key"
	headerBuildID       = "X-MML-Build-Id"
	headerBuildVerified = "X-MML-Build-Verified"
)

const (
	msgUnauthorized      = "unauthorized"
	msgInvalidToken      = "invalid or expired token"
	msgOwnerNotFound     = "owner not found"
	msgGameNotFound      = "game not found or unauthorized"
	msgContainerNotFound = "container not found or unauthorized"
	msgNoAPIKey          = "game does not have an API key yet; generate an API key first"
	msgBuildFailed       = "failed to generate game package"
	msgInvalidType       = "invalid container type"
	msgPrebuiltFailed    = "failed to generate prebuilt container"
)

// Packager generates downloadable artifacts. See pack.Packager.
type Packager interface {
	Generate(ctx context.Context, g *game.Game) (*pack.Artifact, error)
	Bootstrap(ctx context.Context, g *game.Game) (*pack.Artifact, error)
	Prebuilt(ctx context.Context, containerType string) (*pack.Artifact, error)
}

type handler struct {
	db       game.Database
	packager Packager
	tokens   *auth.Tokens
	random   io.Reader
	log      *slog.Logger
}

// GetHealth godoc
//
//	@Summary	Health check
//	@Produce	json
//	@Success	200	{object}	healthResponse
//	@Router		/health [get]
func (h *handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

type healthResponse struct {
	Status string `json:"status"`
}

// DownloadGame godoc
//
//	@Summary	Build and download the package of an owned game
//	@Produce	octet-stream
//	@Param		gameId			path		string	true	"Game ID"
//	@Param		Authorization	header		string	true	"Bearer session token"
//	@Success	200				{file}		binary
//	@Header		200				{string}	X-MML-Build-Id			"Build ID"
//	@Header		200				{string}	X-MML-Build-Verified	"Whether the build marker was found"
//	@Failure	400				{object}	apiError
//	@Failure	401				{object}	apiError
//	@Failure	404				{object}	apiError
//	@Failure	500				{object}	apiError
//	@Router		/download/game/{gameId} [get]
func (h *handler) DownloadGame(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.authenticateOwner(w, r)
	if !ok {
		return
	}

	gameID := r.PathValue("gameId")
	g, err := h.db.GetOwnedGame(r.Context(), owner.ID, gameID)
	if err != nil {
		if errors.Is(err, game.ErrGameNotFound) {
			writeError(w, http.StatusNotFound, msgGameNotFound, codeGameNotFound)
			return
		}
		h.log.Error("failed to get owned game", "game_id", gameID, "owner_id", owner.ID, "error", err)
		writeInternalError(w)
		return
	}

	if !g.HasAPIKey() {
		writeError(w, http.StatusBadRequest, msgNoAPIKey, codeNoAPIKey)
		return
	}

	artifact, err := h.packager.Generate(r.Context(), g)
	if err != nil {
		h.log.Error(msgBuildFailed, "game_id", g.ID, "owner_id", owner.ID, "error", err)
		writeError(w, http.StatusInternalServerError, msgBuildFailed, codeBuildFailed)
		return
	}

	h.log.Info("delivered game package", "game_id", g.ID, "build_id", artifact.BuildID, "verified", artifact.Verified, "size", len(artifact.Data))
	writeArtifact(w, artifact)
}

// DownloadContainer godoc
//
//	@Summary	Download the model of an owned container
//	@Produce	xml
//	@Param		containerId		path		string	true	"Container ID"
//	@Param		Authorization	header		string	true	"Bearer session token"
//	@Success	200				{file}		binary
//	@Failure	401				{object}	apiError
//	@Failure	404				{object}	apiError
//	@Router		/download/container/{containerId} [get]
func (h *handler) DownloadContainer(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.authenticateOwner(w, r)
	if !ok {
		return
	}

	containerID := r.PathValue("containerId")
	c, _, err := h.db.GetOwnedContainer(r.Context(), owner.ID, containerID)
	if err != nil {
		if errors.Is(err, game.ErrContainerNotFound) {
			writeError(w, http.StatusNotFound, msgContainerNotFound, codeContainerNotFound)
			return
		}
		h.log.Error("failed to get owned container", "container_id", containerID, "owner_id", owner.ID, "error", err)
		writeInternalError(w)
		return
	}

	h.writeContainerModel(w, c)
}

// DownloadPrebuilt godoc
//
//	@Summary	Build and download a container model not bound to a game
//	@Produce	octet-stream
//	@Param		type			path		string	true	"Container type"	Enums(DISPLAY, NPC, MINIGAME)
//	@Param		Authorization	header		string	true	"Bearer session token"
//	@Success	200				{file}		binary
//	@Header		200				{string}	X-MML-Build-Id			"Build ID"
//	@Header		200				{string}	X-MML-Build-Verified	"Whether the build marker was found"
//	@Failure	400				{object}	apiError
//	@Failure	401				{object}	apiError
//	@Failure	404				{object}	apiError
//	@Failure	500				{object}	apiError
//	@Router		/download/prebuilt/{type} [get]
func (h *handler) DownloadPrebuilt(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.authenticateOwner(w, r)
	if !ok {
		return
	}

	containerType, ok := game.ContainerTypeFromString(r.PathValue("type"))
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidType, codeBadRequest)
		return
	}

	artifact, err := h.packager.Prebuilt(r.Context(), string(containerType))
	if err != nil {
		h.log.Error(msgPrebuiltFailed, "container_type", containerType, "owner_id", owner.ID, "error", err)
		writeError(w, http.StatusInternalServerError, msgPrebuiltFailed, codeBuildFailed)
		return
	}

	h.log.Info("delivered prebuilt container", "container_type", containerType, "build_id", artifact.BuildID, "verified", artifact.Verified, "size", len(artifact.Data))
	writeArtifact(w, artifact)
}

// IssueAPIKey godoc
//
//	@Summary	Issue or replace the server API key of an owned game
//	@Produce	json
//	@Param		gameId			path		string	true	"Game ID"
//	@Param		Authorization	header		string	true	"Bearer session token"
//	@Success	200				{object}	issueAPIKeyResponse
//	@Failure	401				{object}	apiError
//	@Failure	404				{object}	apiError
//	@Router		/games/{gameId}/api-key [post]
func (h *handler) IssueAPIKey(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.authenticateOwner(w, r)
	if !ok {
		return
	}

	gameID := r.PathValue("gameId")
	g, err := game.IssueAPIKey(r.Context(), h.db, h.random, owner.ID, gameID)
	if err != nil {
		if errors.Is(err, game.ErrGameNotFound) {
			writeError(w, http.StatusNotFound, msgGameNotFound, codeGameNotFound)
			return
		}
		h.log.Error("failed to issue api key", "game_id", gameID, "owner_id", owner.ID, "error", err)
		writeInternalError(w)
		return
	}

	h.log.Info("issued api key", "game_id", g.ID, "owner_id", owner.ID)
	writeJSON(w, http.StatusOK, issueAPIKeyResponse{APIKey: g.ServerAPIKey})
}

type issueAPIKeyResponse struct {
	APIKey string `json:"apiKey"`
}

type createDownloadTokenRequest struct {
	Type        auth.DownloadType `json:"type"`
	ContainerID string            `json:"containerId"`
}

type createDownloadTokenResponse struct {
	Token string `json:"token"`
	Exp   int64  `json:"exp"`
}

// CreateDownloadToken godoc
//
//	@Summary	Create a short-lived download token for a game server
//	@Accept		json
//	@Produce	json
//	@Param		X-API-Key	header		string						true	"Server API key"
//	@Param		request		body		createDownloadTokenRequest	false	"Token type, bootstrap by default"
//	@Success	200			{object}	createDownloadTokenResponse
//	@Failure	400			{object}	apiError
//	@Failure	401			{object}	apiError
//	@Router		/v1/builds/token [post]
func (h *handler) CreateDownloadToken(w http.ResponseWriter, r *http.Request) {
	g, ok := h.authenticateGame(w, r)
	if !ok {
		return
	}

	var req createDownloadTokenRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err).Error(), codeBadRequest)
		return
	}

	switch req.Type {
	case "":
		req.Type = auth.DownloadTypeBootstrap
	case auth.DownloadTypeBootstrap:
	case auth.DownloadTypeContainer:
		if req.ContainerID == "" {
			writeError(w, http.StatusBadRequest, "containerId required", codeBadRequest)
			return
		}
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid type %q", req.Type), codeBadRequest)
		return
	}
	if req.Type == auth.DownloadTypeBootstrap {
		req.ContainerID = ""
	}

	token, d, err := h.tokens.CreateDownload(req.Type, g.ID, req.ContainerID)
	if err != nil {
		h.log.Error("failed to create download token", "game_id", g.ID, "error", err)
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, createDownloadTokenResponse{Token: token, Exp: d.ExpiresAt.Unix()})
}

// DownloadBootstrap godoc
//
//	@Summary	Download the bootstrap bundle of a game
//	@Produce	xml
//	@Param		token		query		string	false	"Bootstrap download token"
//	@Param		X-API-Key	header		string	false	"Server API key"
//	@Success	200			{file}		binary
//	@Failure	400			{object}	apiError
//	@Failure	401			{object}	apiError
//	@Failure	500			{object}	apiError
//	@Router		/v1/builds/bootstrap [get]
func (h *handler) DownloadBootstrap(w http.ResponseWriter, r *http.Request) {
	var g *game.Game
	if token := r.URL.Query().Get("token"); token != "" {
		d, ok := h.authorizeDownload(w, token, auth.DownloadTypeBootstrap, "")
		if !ok {
			return
		}
		var err error
		g, err = h.db.GetGame(r.Context(), d.GameID)
		if err != nil {
			if errors.Is(err, game.ErrGameNotFound) {
				writeError(w, http.StatusUnauthorized, msgInvalidToken, codeInvalidToken)
				return
			}
			h.log.Error("failed to get game", "game_id", d.GameID, "error", err)
			writeInternalError(w)
			return
		}
	} else {
		var ok bool
		g, ok = h.authenticateGame(w, r)
		if !ok {
			return
		}
	}

	if !g.HasAPIKey() {
		writeError(w, http.StatusBadRequest, msgNoAPIKey, codeNoAPIKey)
		return
	}

	artifact, err := h.packager.Bootstrap(r.Context(), g)
	if err != nil {
		h.log.Error("failed to generate bootstrap", "game_id", g.ID, "error", err)
		writeError(w, http.StatusInternalServerError, msgBuildFailed, codeBuildFailed)
		return
	}

	writeArtifact(w, artifact)
}

// DownloadContainerByToken godoc
//
//	@Summary	Download the model of a container from a game server
//	@Produce	xml
//	@Param		containerId	query		string	true	"Container ID"
//	@Param		token		query		string	false	"Container download token"
//	@Param		X-API-Key	header		string	false	"Server API key"
//	@Success	200			{file}		binary
//	@Failure	400			{object}	apiError
//	@Failure	401			{object}	apiError
//	@Failure	404			{object}	apiError
//	@Router		/v1/builds/container [get]
func (h *handler) DownloadContainerByToken(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	containerID := query.Get("containerId")
	if containerID == "" {
		writeError(w, http.StatusBadRequest, "containerId required", codeBadRequest)
		return
	}

	var gameID string
	if token := query.Get("token"); token != "" {
		d, ok := h.authorizeDownload(w, token, auth.DownloadTypeContainer, containerID)
		if !ok {
			return
		}
		gameID = d.GameID
	} else {
		g, ok := h.authenticateGame(w, r)
		if !ok {
			return
		}
		gameID = g.ID
	}

	c, err := h.db.GetContainer(r.Context(), gameID, containerID)
	if err != nil {
		if errors.Is(err, game.ErrContainerNotFound) {
			writeError(w, http.StatusNotFound, msgContainerNotFound, codeContainerNotFound)
			return
		}
		h.log.Error("failed to get container", "game_id", gameID, "container_id", containerID, "error", err)
		writeInternalError(w)
		return
	}

	h.writeContainerModel(w, c)
}

func (h *handler) writeContainerModel(w http.ResponseWriter, c *game.Container) {
	artifact, err := pack.ContainerModel(c)
	if err != nil {
		h.log.Error("failed to generate container model", "container_id", c.ID, "error", err)
		writeInternalError(w)
		return
	}
	writeArtifact(w, artifact)
}

// authenticateOwner resolves the owner of a bearer session token.
// On failure it writes the response and returns false.
func (h *handler) authenticateOwner(w http.ResponseWriter, r *http.Request) (*game.Owner, bool) {
	if err := checkHeaderCountIsOne(r.Header, headerAuthorization); err != nil {
		writeError(w, http.StatusUnauthorized, msgUnauthorized, codeUnauthorized)
		return nil, false
	}
	token, err := auth.BearerToken(r.Header.Get(headerAuthorization))
	if err != nil {
		writeError(w, http.StatusUnauthorized, msgUnauthorized, codeUnauthorized)
		return nil, false
	}

	ownerID, err := h.tokens.ParseSession(token)
	if err != nil {
		h.log.Debug("rejected session token", "error", err)
		writeError(w, http.StatusUnauthorized, msgInvalidToken, codeInvalidToken)
		return nil, false
	}

	owner, err := h.db.GetOwner(r.Context(), ownerID)
	if err != nil {
		if errors.Is(err, game.ErrOwnerNotFound) {
			writeError(w, http.StatusNotFound, msgOwnerNotFound, codeOwnerNotFound)
			return nil, false
		}
		h.log.Error("failed to get owner", "owner_id", ownerID, "error", err)
		writeInternalError(w)
		return nil, false
	}

	return owner, true
}

// authenticateGame resolves the game of an X-API-Key header.
// On failure it writes the response and returns false.
func (h *handler) authenticateGame(w http.ResponseWriter, r *http.Request) (*game.Game, bool) {
	if err := checkHeaderCountIsOne(r.Header, headerXAPIKey); err != nil {
		writeError(w, http.StatusUnauthorized, msgUnauthorized, codeUnauthorized)
		return nil, false
	}
	apiKey := r.Header.Get(headerXAPIKey)
	if !game.IsAPIKey(apiKey) {
		writeError(w, http.StatusUnauthorized, msgUnauthorized, codeUnauthorized)
		return nil, false
	}

	g, err := h.db.GetGameByAPIKey(r.Context(), apiKey)
	if err != nil {
		if errors.Is(err, game.ErrGameNotFound) {
			writeError(w, http.StatusUnauthorized, msgUnauthorized, codeUnauthorized)
			return nil, false
		}
		h.log.Error("failed to get game by api key", "error", err)
		writeInternalError(w)
		return nil, false
	}

	return g, true
}

// authorizeDownload checks a download token against the requested
// download. On failure it writes the response and returns false.
func (h *handler) authorizeDownload(w http.ResponseWriter, token string, typ auth.DownloadType, containerID string) (*auth.Download, bool) {
	d, err := h.tokens.ParseDownload(token)
	if err != nil {
		h.log.Debug("rejected download token", "error", err)
		writeError(w, http.StatusUnauthorized, msgInvalidToken, codeInvalidToken)
		return nil, false
	}
	if d.Type != typ || d.ContainerID != containerID {
		writeError(w, http.StatusUnauthorized, msgInvalidToken, codeInvalidToken)
		return nil, false
	}
	return d, true
}

func writeArtifact(w http.ResponseWriter, a *pack.Artifact) {
	header := w.Header()
	header.Set("Content-Type", a.ContentType)
	header.Set("Content-Disposition", `attachment; filename="`+a.Filename+`"`)
	header.Set("Content-Length", strconv.Itoa(len(a.Data)))
	header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	header.Set("Pragma", "no-cache")
	header.Set("Expires", "0")
	if a.BuildID != "" {
		header.Set(headerBuildID, a.BuildID)
		header.Set(headerBuildVerified, strconv.FormatBool(a.Verified))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Data)
}

func checkHeaderCountIsOne(header http.Header, key string) error {
	if got, want := len(header.Values(key)), 1; got != want {
		if got == 0 {
			return fmt.Errorf("missing %s request header", key)
		} else {
			return fmt.Errorf("multiple %s request headers", key)
		}
	}
	return nil
}
