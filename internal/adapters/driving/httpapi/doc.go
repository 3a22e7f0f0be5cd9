// Package httpapi exposes the document services over a JSON HTTP API built on gin.
//
// Routes:
//
//	GET  /                    service info
//	GET  /health              liveness
//	POST /api/upload          multipart "file" field
//	POST /api/ask             {"document_id", "question"}
//	POST /api/extract         {"document_id"}
//	GET  /api/documents       list, newest first
//	GET  /api/documents/:id   metadata and full text
//
// Errors are returned as {"detail": "..."} with the status chosen by StatusFor.
package httpapi
