package v1handler

import (
	"io"
	"net/http"
	"urlextract/pkg/domain"
	"urlextract/pkg/serrors"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

type extractRequest struct {
	Text    string
	hasText bool
}

func (r *extractRequest) Decode(d *jx.Decoder) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "text":
			s, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "decode text")
			}
			r.Text, r.hasText = s, true
		default:
			return d.Skip()
		}

		return nil
	})
}

type extractBatchRequest struct {
	Texts []string
}

func (r *extractBatchRequest) Decode(d *jx.Decoder) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "texts":
			r.Texts = r.Texts[:0]
			err := d.Arr(func(d *jx.Decoder) error {
				s, err := d.Str()
				if err != nil {
					return err
				}
				r.Texts = append(r.Texts, s)

				return nil
			})
			if err != nil {
				return errors.Wrap(err, "decode texts")
			}
		default:
			return d.Skip()
		}

		return nil
	})
}

type decoder interface {
	Decode(d *jx.Decoder) error
}

// decodeBody reads the request body into v. Oversized bodies map to
// ErrPayloadTooLarge and malformed JSON to ErrBadRequest.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v decoder) error {
	body := r.Body
	if h.options.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.options.MaxBodyBytes)
	}

	buf, err := io.ReadAll(body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return serrors.With(serrors.ErrPayloadTooLarge, "request body is larger than %d bytes", mbe.Limit)
		}

		return errors.Wrap(err, "read body")
	}

	if err := v.Decode(jx.DecodeBytes(buf)); err != nil {
		return serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body")
	}

	return nil
}

// Extract handles POST /v1/extract.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.WriteError(w, r, err)

		return
	}
	if !req.hasText {
		h.WriteError(w, r, serrors.With(serrors.ErrBadRequest, "text is required"))

		return
	}

	res, err := h.deps.Extractor.Extract(r.Context(), req.Text)
	if err != nil {
		h.WriteError(w, r, err)

		return
	}

	var e jx.Encoder
	encodeExtraction(&e, res)
	writeJSON(r.Context(), w, http.StatusOK, e.Bytes())
}

// ExtractBatch handles POST /v1/extract/batch.
func (h *Handler) ExtractBatch(w http.ResponseWriter, r *http.Request) {
	var req extractBatchRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.WriteError(w, r, err)

		return
	}

	res, err := h.deps.Extractor.ExtractBatch(r.Context(), req.Texts)
	if err != nil {
		h.WriteError(w, r, err)

		return
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("results")
	e.ArrStart()
	for i := range res {
		encodeExtraction(&e, &res[i])
	}
	e.ArrEnd()
	e.ObjEnd()
	writeJSON(r.Context(), w, http.StatusOK, e.Bytes())
}

func encodeExtraction(e *jx.Encoder, x *domain.Extraction) {
	e.ObjStart()
	e.FieldStart("urls")
	e.ArrStart()
	for _, u := range x.URLs {
		e.ObjStart()
		e.FieldStart("url")
		e.Str(u.Text)
		if u.Normalized != "" {
			e.FieldStart("normalized")
			e.Str(u.Normalized)
		}
		e.FieldStart("start")
		e.Int(u.Start)
		e.FieldStart("end")
		e.Int(u.End)
		e.FieldStart("hasProtocol")
		e.Bool(u.HasProtocol)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("candidates")
	e.Int(x.Candidates)
	e.FieldStart("rejected")
	e.Int(x.Rejected)
	e.ObjEnd()
}
