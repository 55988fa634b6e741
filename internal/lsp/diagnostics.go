package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/nabla-lang/nabla/internal/lang/errors"
	"github.com/nabla-lang/nabla/internal/lang/nabla"
)

// publishDiagnostics converts a document's analysis errors to LSP
// diagnostics and publishes them. A clean result publishes an empty list,
// clearing any diagnostics from a previous version.
func (s *Server) publishDiagnostics(ctx context.Context, doc *Document) {
	diagnostics := make([]protocol.Diagnostic, 0, len(doc.Result.Errors))
	for _, e := range doc.Result.Errors {
		diagnostics = append(diagnostics, convertDiagnostic(doc.Content, doc.Result, e))
	}

	err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     uint32(doc.Version), //nolint:gosec // LSP version numbers are always non-negative
		Diagnostics: diagnostics,
	})
	if err != nil {
		s.logger.Error("failed to publish diagnostics", zap.Error(err))
	}
}

// convertDiagnostic turns one pipeline error into an LSP diagnostic, using
// the pipeline's own range conversion to map it to a line/char span.
func convertDiagnostic(source string, result nabla.Result, e errors.Error) protocol.Diagnostic {
	span := nabla.RangeOf(source, result.Tokens, e)

	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: uint32(span.Start.Line), Character: uint32(span.Start.Char)}, //nolint:gosec // positions are always non-negative
			End:   protocol.Position{Line: uint32(span.End.Line), Character: uint32(span.End.Char)},     //nolint:gosec // positions are always non-negative
		},
		Severity: protocol.DiagnosticSeverityError,
		Source:   "nabla",
		Message:  e.Error(),
	}
}
