package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/ragserve/api"
	"github.com/BaSui01/ragserve/internal/metrics"
	"github.com/BaSui01/ragserve/rag"
	"github.com/BaSui01/ragserve/rag/loader"
	"github.com/BaSui01/ragserve/types"
)

// maxUploadBytes 单次上传大小上限。
const maxUploadBytes = 32 << 20 // 32 MiB

// DocumentsHandler 文档上传与索引处理器。
type DocumentsHandler struct {
	loaders  *loader.Registry
	chunker  *rag.DocumentChunker
	embedder rag.Embedder
	store    rag.VectorStore
	metrics  *metrics.Collector // 可为 nil
	logger   *zap.Logger
}

// NewDocumentsHandler 创建文档处理器。
func NewDocumentsHandler(
	loaders *loader.Registry,
	chunker *rag.DocumentChunker,
	embedder rag.Embedder,
	store rag.VectorStore,
	collector *metrics.Collector,
	logger *zap.Logger,
) *DocumentsHandler {
	return &DocumentsHandler{
		loaders:  loaders,
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		metrics:  collector,
		logger:   logger,
	}
}

// HandleUpload 处理 POST /documents/upload：
// 上传文件落盘暂存 → 按扩展名选择 loader → 分块 → 嵌入 → 入库。
func (h *DocumentsHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, r, types.NewError(types.ErrInvalidRequest, "multipart field 'file' is required").WithCause(err), h.logger)
		return
	}
	defer file.Close()

	staged, err := h.stage(file, header.Filename)
	if err != nil {
		WriteError(w, r, types.NewError(types.ErrInternalError, "staging upload failed").WithCause(err), h.logger)
		return
	}
	defer os.RemoveAll(filepath.Dir(staged))

	docs, err := h.loaders.Load(r.Context(), staged)
	if err != nil {
		WriteError(w, r, types.NewError(types.ErrInvalidRequest, "loading document failed").WithCause(err), h.logger)
		return
	}

	indexed := 0
	for _, doc := range docs {
		pieces, err := h.chunker.Chunk(doc.Content)
		if err != nil {
			WriteError(w, r, types.NewError(types.ErrInternalError, "chunking failed").WithCause(err), h.logger)
			return
		}
		if len(pieces) == 0 {
			continue
		}

		vectors, err := h.embedder.EmbedDocuments(r.Context(), pieces)
		if err != nil {
			WriteError(w, r, types.NewError(types.ErrRetrievalFailure, "embedding failed").WithCause(err), h.logger)
			return
		}

		chunks := make([]rag.Document, len(pieces))
		for i, piece := range pieces {
			meta := make(map[string]any, len(doc.Metadata)+1)
			for k, v := range doc.Metadata {
				meta[k] = v
			}
			// 暂存路径是临时的，元数据里还原原始文件名。
			meta["source"] = header.Filename
			meta["path"] = header.Filename
			meta["chunk"] = i
			chunks[i] = rag.Document{
				ID:        uuid.NewString(),
				Content:   piece,
				Metadata:  meta,
				Embedding: vectors[i],
			}
		}
		if err := h.store.AddDocuments(r.Context(), chunks); err != nil {
			WriteError(w, r, types.NewError(types.ErrInternalError, "indexing failed").WithCause(err), h.logger)
			return
		}
		indexed += len(chunks)
	}

	if h.metrics != nil {
		h.metrics.AddDocumentsIndexed(indexed)
	}

	h.logger.Info("document indexed",
		zap.String("file", header.Filename),
		zap.Int("sections", len(docs)),
		zap.Int("chunks", indexed))

	WriteSuccess(w, r, api.UploadResponse{
		File:     header.Filename,
		Sections: len(docs),
		Chunks:   indexed,
	})
}

// HandleCount 处理 GET /documents/count。
func (h *DocumentsHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.Count(r.Context())
	if err != nil {
		WriteError(w, r, types.NewError(types.ErrInternalError, "counting documents failed").WithCause(err), h.logger)
		return
	}
	WriteSuccess(w, r, api.CountResponse{Count: n})
}

// stage 把上传内容写入独立临时目录，保留原扩展名供 loader 路由。
func (h *DocumentsHandler) stage(src io.Reader, filename string) (string, error) {
	dir, err := os.MkdirTemp("", "ragserve-upload-*")
	if err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(filename))
	dst, err := os.Create(path)
	if err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("create staged file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("write staged file: %w", err)
	}
	return path, nil
}
