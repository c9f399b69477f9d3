package soap

import (
	"encoding/xml"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const envelopeOpen = `<?xml version="1.0" encoding="utf-8"?>` +
	`<soap:Envelope xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:xsd="http://www.w3.org/2001/XMLSchema" xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">` +
	`<soap:Body>`

const envelopeClose = `</soap:Body></soap:Envelope>`

func TestBuilderResponse(t *testing.T) {
	b := NewBuilder(false, nil)

	t.Run("empty result is a self-closing wrapper", func(t *testing.T) {
		reply := b.Response("AssociateWbid", Map{})
		assert.Equal(t, http.StatusOK, reply.Status)
		assert.Equal(t, envelopeOpen+`<AssociateWbidResponse/>`+envelopeClose, string(reply.Body))
	})

	t.Run("nested maps and lists keep field order", func(t *testing.T) {
		result := Map{
			{Name: "Outer", Value: Map{
				{Name: "B", Value: Text("2")},
				{Name: "A", Value: Text("1")},
				{Name: "Items", Value: List{Text("x"), Text("y")}},
				{Name: "None", Value: List{}},
			}},
		}
		reply := b.Response("Get", result)
		require.Equal(t, http.StatusOK, reply.Status)
		assert.Equal(t, envelopeOpen+
			`<GetResponse><Outer><B>2</B><A>1</A><Items>x</Items><Items>y</Items><None/></Outer></GetResponse>`+
			envelopeClose, string(reply.Body))
	})

	t.Run("escapes text", func(t *testing.T) {
		reply := b.Response("M", Map{{Name: "Error", Value: Text(`a<b & "c"`)}})
		assert.Contains(t, string(reply.Body), `<Error>a&lt;b &amp; "c"</Error>`)
	})

	t.Run("pretty printing indents without changing content", func(t *testing.T) {
		pretty := NewBuilder(true, nil)
		reply := pretty.Response("M", Map{{Name: "F", Value: Text("v")}})
		body := string(reply.Body)
		assert.True(t, strings.HasPrefix(body, xmlDeclaration+"\n"))
		assert.Contains(t, body, "\n      <F>v</F>\n")

		var compact, indented struct {
			Body struct {
				Inner []byte `xml:",innerxml"`
			} `xml:"Body"`
		}
		require.NoError(t, xml.Unmarshal(reply.Body, &indented))
		require.NoError(t, xml.Unmarshal(b.Response("M", Map{{Name: "F", Value: Text("v")}}).Body, &compact))
		assert.Equal(t, strings.Join(strings.Fields(string(compact.Body.Inner)), ""),
			strings.Join(strings.Fields(string(indented.Body.Inner)), ""))
	})

	t.Run("unserializable result falls back to a server fault", func(t *testing.T) {
		reply := b.Response("M", Map{{Name: "bad name", Value: Text("v")}})
		assert.Equal(t, http.StatusInternalServerError, reply.Status)
		assert.Contains(t, string(reply.Body), `<faultcode>soap:Server</faultcode>`)
		assert.Contains(t, string(reply.Body), `<faultstring>Failed to serialize SOAP response.</faultstring>`)
	})

	t.Run("invalid characters fall back to a server fault", func(t *testing.T) {
		reply := b.Response("M", Map{{Name: "F", Value: Text("nul\x00")}})
		assert.Equal(t, http.StatusInternalServerError, reply.Status)
		assert.Contains(t, string(reply.Body), `Failed to serialize SOAP response.`)
	})
}

func TestBuilderFault(t *testing.T) {
	b := NewBuilder(false, nil)

	t.Run("generic fault", func(t *testing.T) {
		reply := b.Fault(http.StatusInternalServerError, &Fault{
			Code:   CodeMethodNotFound,
			String: "Method DeleteEverything not found.",
			Detail: "No additional details.",
		})
		assert.Equal(t, http.StatusInternalServerError, reply.Status)
		assert.Equal(t, envelopeOpen+
			`<soap:Fault><faultcode>soap:Client.MethodNotFound</faultcode>`+
			`<faultstring>Method DeleteEverything not found.</faultstring>`+
			`<detail>No additional details.</detail></soap:Fault>`+
			envelopeClose, string(reply.Body))
	})

	t.Run("empty detail is self-closing", func(t *testing.T) {
		reply := b.Fault(http.StatusBadRequest, &Fault{Code: CodeClient, String: "Invalid XML format"})
		assert.Equal(t, http.StatusBadRequest, reply.Status)
		assert.Contains(t, string(reply.Body), `<faultstring>Invalid XML format</faultstring><detail/>`)
	})

	t.Run("ticket expired marker overrides the whole fault body", func(t *testing.T) {
		want := envelopeOpen + `<soap:Fault>` +
			`<soap:Code>soap:Receiver</soap:Code>` +
			`<soap:Reason>Unhandled exception ---&gt; The provided SteamTicketInformation ticket has expired.</soap:Reason>` +
			`<soap:Node>Turbine.Ams.Steam.SteamAuthenticationProvider.ValidateExternalTicket_worker</soap:Node>` +
			`<detail><exceptiontype>Turbine.Security.TicketExpiredException</exceptiontype><errorcode>0xA01B000C</errorcode></detail>` +
			`</soap:Fault>` + envelopeClose

		for _, f := range []*Fault{
			ErrTicketExpired,
			{Code: CodeClient, String: "xx SteamTicketInformation ticket has expired xx", Detail: "ignored"},
			{Code: CodeMethodNotFound, String: "SteamTicketInformation ticket has expired", Detail: "\x00"},
		} {
			reply := b.Fault(http.StatusInternalServerError, f)
			assert.Equal(t, want, string(reply.Body))
		}
	})

	t.Run("unserializable fault uses the literal fallback", func(t *testing.T) {
		reply := b.Fault(http.StatusInternalServerError, &Fault{Code: CodeServer, String: "x", Detail: "bad\x01"})
		assert.Equal(t, http.StatusInternalServerError, reply.Status)
		assert.Equal(t, fallbackFault, string(reply.Body))
	})
}

func TestSelectPayload(t *testing.T) {
	generic := &Fault{Code: CodeServer, String: "Error processing X"}
	assert.Same(t, generic, SelectPayload(generic))
	assert.IsType(t, TicketExpired{}, SelectPayload(ErrTicketExpired))
}
