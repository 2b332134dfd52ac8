package dom

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
)

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)+$`)

// Hyphenated names that already belong to SVG and MathML.
var reservedNames = map[string]bool{
	"annotation-xml":   true,
	"color-profile":    true,
	"font-face":        true,
	"font-face-src":    true,
	"font-face-uri":    true,
	"font-face-format": true,
	"font-face-name":   true,
	"missing-glyph":    true,
}

// ValidName reports whether tag can be used as a custom element name.
func ValidName(tag string) bool {
	return namePattern.MatchString(tag) && !reservedNames[tag]
}

// Definition describes a custom element.
type Definition struct {
	// ObservedAttributes lists the attributes whose changes are delivered to
	// AttributeChanger.
	ObservedAttributes []string

	// New creates the instance backing el. It runs once per element, when the
	// element is upgraded.
	New func(el *Element) any
}

func (d *Definition) observes(name string) bool {
	for _, a := range d.ObservedAttributes {
		if a == name {
			return true
		}
	}
	return false
}

// Connector is implemented by instances that react to insertion into a
// document.
type Connector interface {
	ConnectedCallback() error
}

// Disconnector is implemented by instances that react to removal from a
// document.
type Disconnector interface {
	DisconnectedCallback() error
}

// AttributeChanger is implemented by instances that react to changes of
// their observed attributes. A nil pointer means the attribute is absent.
type AttributeChanger interface {
	AttributeChangedCallback(name string, oldValue, newValue *string) error
}

// Registry holds custom element definitions and the documents they apply to.
type Registry struct {
	mu     sync.RWMutex
	defs   map[string]*Definition
	docs   map[*Document]struct{}
	logger *slog.Logger
}

// NewRegistry creates an empty registry. If logger is nil, slog.Default()
// is used.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		defs:   make(map[string]*Definition),
		docs:   make(map[*Document]struct{}),
		logger: logger,
	}
}

// Logger returns the registry's logger.
func (r *Registry) Logger() *slog.Logger {
	return r.logger
}

// Define registers def under tag and upgrades matching elements already
// present in the registry's documents. The returned error joins the
// lifecycle callback errors of those upgrades.
func (r *Registry) Define(tag string, def Definition) error {
	if !ValidName(tag) {
		return fmt.Errorf("%w: %q", ErrInvalidName, tag)
	}
	if def.New == nil {
		return fmt.Errorf("%w: %q", ErrNoConstructor, tag)
	}

	r.mu.Lock()
	if _, ok := r.defs[tag]; ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrAlreadyDefined, tag)
	}
	d := def
	d.ObservedAttributes = append([]string(nil), def.ObservedAttributes...)
	r.defs[tag] = &d
	docs := make([]*Document, 0, len(r.docs))
	for doc := range r.docs {
		docs = append(docs, doc)
	}
	r.mu.Unlock()

	r.logger.Debug("custom element defined", "tag", tag)

	var errs []error
	for _, doc := range docs {
		if err := doc.upgradeAll(tag); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Defined reports whether tag has a definition.
func (r *Registry) Defined(tag string) bool {
	_, ok := r.lookup(tag)
	return ok
}

// Tags returns the defined tag names in no particular order.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.defs))
	for tag := range r.defs {
		tags = append(tags, tag)
	}
	return tags
}

// Upgrade upgrades el now if its tag is defined, without waiting for it to be
// connected.
func (r *Registry) Upgrade(el *Element) error {
	if el.doc.registry != r {
		return ErrWrongDocument
	}
	return el.upgrade()
}

func (r *Registry) lookup(tag string) (*Definition, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[tag]
	return d, ok
}

func (r *Registry) attach(doc *Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc] = struct{}{}
}

func (r *Registry) detach(doc *Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, doc)
}
