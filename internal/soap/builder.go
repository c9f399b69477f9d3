package soap

import (
	"log/slog"
	"net/http"
)

// Reply is a serialized SOAP reply and the HTTP status it travels with.
type Reply struct {
	Status int
	Body   []byte
}

// Builder serializes success and fault envelopes.
type Builder struct {
	pretty bool
	logger *slog.Logger
}

// NewBuilder returns a Builder. pretty indents output by two spaces.
func NewBuilder(pretty bool, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{pretty: pretty, logger: logger}
}

func envelope(children ...*element) *element {
	env := newElement("soap:Envelope")
	env.attrs = []attr{
		{name: "xmlns:xsi", value: NamespaceXSI},
		{name: "xmlns:xsd", value: NamespaceXSD},
		{name: "xmlns:soap", value: NamespaceSOAP11},
	}
	return env.add(newElement("soap:Body").add(children...))
}

// Response wraps result in <method>Response. A result that cannot be serialized
// becomes a generic Server fault.
func (b *Builder) Response(method string, result Map) Reply {
	wrapper := newElement(method + "Response")
	for _, f := range result {
		appendValue(wrapper, f.Name, f.Value)
	}
	body, err := encodeDocument(envelope(wrapper), b.pretty)
	if err != nil {
		b.logger.Error("soap: failed to serialize success response", "method", method, "error", err)
		return b.Fault(http.StatusInternalServerError, &Fault{
			Code:   CodeServer,
			String: "Failed to serialize SOAP response.",
			Detail: noDetail,
		})
	}
	return Reply{Status: http.StatusOK, Body: body}
}

// Fault serializes f with the given status. If the fault cannot be serialized the
// fixed fallback envelope is returned instead.
func (b *Builder) Fault(status int, f *Fault) Reply {
	fault := newElement("soap:Fault").add(SelectPayload(f).faultChildren()...)
	body, err := encodeDocument(envelope(fault), b.pretty)
	if err != nil {
		b.logger.Error("soap: failed to serialize fault response", "faultcode", f.Code, "error", err)
		return Reply{Status: status, Body: []byte(fallbackFault)}
	}
	return Reply{Status: status, Body: body}
}
