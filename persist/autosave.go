package persist

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/tdewolff/minify/v2"
	mhtml "github.com/tdewolff/minify/v2/html"

	"github.com/rgonek/richtext-html/model"
	"github.com/rgonek/richtext-html/serializer"
)

// InitialValue is restored when nothing has been saved yet.
const InitialValue = "<p></p>"

func newMinifier() *minify.M {
	m := minify.New()
	m.Add("text/html", &mhtml.Minifier{KeepEndTags: true, KeepQuotes: true})
	return m
}

// Minify collapses insignificant whitespace in HTML markup. End tags and
// attribute quotes are kept so the result stays readable by the serializer.
func Minify(markup string) (string, error) {
	out, err := newMinifier().String("text/html", markup)
	if err != nil {
		return "", fmt.Errorf("minify markup: %w", err)
	}
	return out, nil
}

// AutosaveOptions configures an Autosaver.
type AutosaveOptions struct {
	// Key defaults to ContentKey.
	Key string
	// Minify normalizes whitespace in the stored markup.
	Minify bool
	Logger logrus.FieldLogger
}

// Autosaver writes a document to a store whenever it changes. It belongs to
// one editing session and is not safe for concurrent use.
type Autosaver struct {
	serializer *serializer.Serializer
	store      Store
	key        string
	minifier   *minify.M
	logger     logrus.FieldLogger
	last       *model.Document
}

// NewAutosaver creates an Autosaver.
func NewAutosaver(s *serializer.Serializer, store Store, opts AutosaveOptions) (*Autosaver, error) {
	if s == nil {
		return nil, errors.New("persist: autosaver requires a serializer")
	}
	if store == nil {
		return nil, errors.New("persist: autosaver requires a store")
	}

	a := &Autosaver{
		serializer: s,
		store:      store,
		key:        opts.Key,
		logger:     opts.Logger,
	}
	if a.key == "" {
		a.key = ContentKey
	}
	if opts.Minify {
		a.minifier = newMinifier()
	}
	if a.logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		a.logger = logger
	}
	return a, nil
}

// OnChange saves doc when it differs from the last saved or restored
// document. It reports whether a write happened.
func (a *Autosaver) OnChange(ctx context.Context, doc model.Document) (bool, error) {
	if a.last != nil && model.Equal(*a.last, doc) {
		return false, nil
	}

	result, err := a.serializer.Serialize(doc)
	if err != nil {
		return false, fmt.Errorf("serialize document: %w", err)
	}
	for _, warning := range result.Warnings {
		a.logger.WithFields(logrus.Fields{
			"warning": warning.Type,
			"node":    warning.NodeType,
		}).Warn(warning.Message)
	}

	markup := result.HTML
	if a.minifier != nil {
		if markup, err = a.minifier.String("text/html", markup); err != nil {
			return false, fmt.Errorf("minify markup: %w", err)
		}
	}

	if err := a.store.Set(ctx, a.key, markup); err != nil {
		return false, fmt.Errorf("store %q: %w", a.key, err)
	}

	saved := doc.Clone()
	a.last = &saved
	a.logger.WithFields(logrus.Fields{"key": a.key, "bytes": len(markup)}).Debug("document saved")
	return true, nil
}

// Restore loads and deserializes the stored document, or the initial value
// when nothing is stored.
func (a *Autosaver) Restore(ctx context.Context) (model.Document, error) {
	markup, err := a.store.Get(ctx, a.key)
	if errors.Is(err, ErrNotFound) {
		markup = InitialValue
	} else if err != nil {
		return model.Document{}, fmt.Errorf("load %q: %w", a.key, err)
	}

	result, err := a.serializer.Deserialize(markup)
	if err != nil {
		return model.Document{}, fmt.Errorf("deserialize stored markup: %w", err)
	}

	restored := result.Document.Clone()
	a.last = &restored
	return result.Document, nil
}
