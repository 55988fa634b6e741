// Package lsp implements a Language Server Protocol server for Nabla. It is
// diagnostics-only: the server re-analyzes a document on every open/change
// and republishes the resulting error list, with no hover, completion, or
// formatting support.
package lsp

import (
	"context"
	"sync"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/nabla-lang/nabla/internal/lang/nabla"
)

// Server implements protocol.Server for Nabla.
type Server struct {
	client protocol.Client
	logger *zap.Logger

	mu        sync.RWMutex
	documents map[protocol.DocumentURI]*Document
}

// Document is an open file tracked by the server.
type Document struct {
	URI     protocol.DocumentURI
	Version int32
	Content string
	Result  nabla.Result
}

// NewServer creates a Nabla LSP server bound to client for sending
// notifications back to the editor.
func NewServer(client protocol.Client, logger *zap.Logger) *Server {
	return &Server{
		client:    client,
		logger:    logger,
		documents: make(map[protocol.DocumentURI]*Document),
	}
}

// Initialize handles the initialize request.
func (s *Server) Initialize(_ context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s.logger.Info("initialize", zap.Any("params", params))

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name: "nabla-lsp",
		},
	}, nil
}

// Initialized handles the initialized notification.
func (s *Server) Initialized(_ context.Context, _ *protocol.InitializedParams) error {
	s.logger.Info("initialized")
	return nil
}

// Shutdown handles the shutdown request.
func (s *Server) Shutdown(_ context.Context) error {
	s.logger.Info("shutdown")
	return nil
}

// Exit handles the exit notification.
func (s *Server) Exit(_ context.Context) error {
	s.logger.Info("exit")
	return nil
}

// DidOpen handles textDocument/didOpen.
func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &Document{
		URI:     params.TextDocument.URI,
		Version: params.TextDocument.Version,
		Content: params.TextDocument.Text,
		Result:  nabla.Analyze(params.TextDocument.Text),
	}
	s.documents[doc.URI] = doc
	s.publishDiagnostics(ctx, doc)

	return nil
}

// DidChange handles textDocument/didChange. Nabla advertises full-document
// sync, so each change carries the entire new content.
func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[params.TextDocument.URI]
	if !ok {
		s.logger.Warn("didChange for unknown document", zap.String("uri", string(params.TextDocument.URI)))
		return nil
	}
	if len(params.ContentChanges) == 0 {
		return nil
	}

	doc.Content = params.ContentChanges[len(params.ContentChanges)-1].Text
	doc.Version = params.TextDocument.Version
	doc.Result = nabla.Analyze(doc.Content)
	s.publishDiagnostics(ctx, doc)

	return nil
}

// DidClose handles textDocument/didClose, clearing diagnostics for the
// closed document.
func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.documents, params.TextDocument.URI)

	if err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	}); err != nil {
		s.logger.Error("failed to clear diagnostics", zap.Error(err))
	}

	return nil
}

// DidSave handles textDocument/didSave. Content already matches the last
// didChange, so there is nothing further to re-analyze.
func (s *Server) DidSave(_ context.Context, _ *protocol.DidSaveTextDocumentParams) error {
	return nil
}
