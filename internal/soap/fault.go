package soap

import (
	"fmt"
	"strings"
)

// FaultCode is the suffix of the soap:-qualified faultcode element.
type FaultCode string

const (
	CodeClient         FaultCode = "Client"
	CodeServer         FaultCode = "Server"
	CodeMethodNotFound FaultCode = "Client.MethodNotFound"
)

// TicketExpiredMarker selects the legacy ticket-expired fault body.
const TicketExpiredMarker = "SteamTicketInformation ticket has expired"

const noDetail = "No additional details."

// emptyResultDetail is the JSON rendering of the empty result that was refused.
const emptyResultDetail = "{}"

// fallbackFault is written when a fault envelope itself cannot be serialized.
const fallbackFault = `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body><soap:Fault><faultcode>soap:Server</faultcode><faultstring>Internal server error during fault serialization.</faultstring></soap:Fault></soap:Body></soap:Envelope>`

// Fault is a SOAP fault. Handlers may return one as an error to choose the
// faultcode and faultstring themselves.
type Fault struct {
	Code   FaultCode
	String string
	Detail string
}

func (f *Fault) Error() string {
	if f.Detail != "" {
		return fmt.Sprintf("soap fault %s: %s (%s)", f.Code, f.String, f.Detail)
	}
	return fmt.Sprintf("soap fault %s: %s", f.Code, f.String)
}

// ErrTicketExpired is the fault a handler returns when a console ticket is no
// longer accepted. Its string carries TicketExpiredMarker.
var ErrTicketExpired = &Fault{
	Code:   CodeServer,
	String: "The provided " + TicketExpiredMarker + ".",
}

// FaultPayload is the body placed inside soap:Fault: either a *Fault rendered
// generically, or TicketExpired.
type FaultPayload interface {
	faultChildren() []*element
}

func (f *Fault) faultChildren() []*element {
	return []*element{
		textElement("faultcode", "soap:"+string(f.Code)),
		textElement("faultstring", f.String),
		textElement("detail", f.Detail),
	}
}

// TicketExpired is the fixed fault body of Turbine.Security.TicketExpiredException.
// None of its text depends on the triggering fault.
type TicketExpired struct{}

func (TicketExpired) faultChildren() []*element {
	detail := newElement("detail").add(
		textElement("exceptiontype", "Turbine.Security.TicketExpiredException"),
		textElement("errorcode", "0xA01B000C"),
	)
	return []*element{
		textElement("soap:Code", "soap:Receiver"),
		textElement("soap:Reason", "Unhandled exception ---> The provided SteamTicketInformation ticket has expired."),
		textElement("soap:Node", "Turbine.Ams.Steam.SteamAuthenticationProvider.ValidateExternalTicket_worker"),
		detail,
	}
}

// SelectPayload picks the wire shape for f. Any fault whose string mentions the
// expired Steam ticket is replaced wholesale by TicketExpired.
func SelectPayload(f *Fault) FaultPayload {
	if strings.Contains(f.String, TicketExpiredMarker) {
		return TicketExpired{}
	}
	return f
}
