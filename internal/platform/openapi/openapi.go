package openapi

import (
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
)

// RouteLister is satisfied by *echo.Echo.
type RouteLister interface {
	Routes() []*echo.Route
}

// Generator builds an OpenAPI 3.0 document from the routes registered on
// an echo instance.
type Generator struct {
	routes  RouteLister
	version string
	baseURL string
}

// NewGenerator creates a new OpenAPI document generator.
func NewGenerator(routes RouteLister, version, baseURL string) *Generator {
	return &Generator{routes: routes, version: version, baseURL: baseURL}
}

// operation describes one documented endpoint.
type operation struct {
	summary  string
	tag      string
	body     string // request schema name
	response string // response schema name
	status   string
	query    []queryParam
	produces []string
}

type queryParam struct {
	name, typ, description string
}

var pageParams = []queryParam{
	{"limit", "integer", "Page size, 1 to 100"},
	{"offset", "integer", "Number of records to skip"},
}

var patientFilter = queryParam{"patient_id", "integer", "Only records for this patient"}

// operations is keyed by "METHOD /path" with echo path syntax, relative to
// the API group.
var operations = map[string]operation{
	"GET /patients":                 {summary: "List patients", tag: "patients", response: "PatientPage", query: append([]queryParam{{"q", "string", "Name or phone keyword"}}, pageParams...)},
	"GET /patients/:id":             {summary: "Get a patient", tag: "patients", response: "Patient"},
	"POST /patients":                {summary: "Register a patient", tag: "patients", body: "Patient", response: "Patient", status: "201"},
	"PUT /patients/:id":             {summary: "Update a patient", tag: "patients", body: "Patient", response: "Patient"},
	"GET /medicines":                {summary: "List medicines", tag: "medicines", response: "MedicinePage", query: append([]queryParam{{"q", "string", "Name keyword"}}, pageParams...)},
	"GET /medicines/:id":            {summary: "Get a medicine", tag: "medicines", response: "Medicine"},
	"POST /medicines":               {summary: "Add a medicine", tag: "medicines", body: "Medicine", response: "Medicine", status: "201"},
	"PUT /medicines/:id":            {summary: "Update a medicine", tag: "medicines", body: "Medicine", response: "Medicine"},
	"GET /appointments":             {summary: "List appointments", tag: "appointments", response: "AppointmentPage", query: append([]queryParam{patientFilter}, pageParams...)},
	"GET /appointments/:id":         {summary: "Get an appointment", tag: "appointments", response: "Appointment"},
	"POST /appointments":            {summary: "Book an appointment", tag: "appointments", body: "Appointment", response: "Appointment", status: "201"},
	"POST /appointments/:id/cancel": {summary: "Cancel an appointment", tag: "appointments", response: "Appointment"},
	"GET /bills":                    {summary: "List bills, newest first", tag: "billing", response: "BillPage", query: append([]queryParam{patientFilter}, pageParams...)},
	"GET /bills/:id":                {summary: "Get a bill with its items and patient", tag: "billing", response: "BillDetail"},
	"POST /bills":                   {summary: "Create a bill", tag: "billing", body: "CreateBillRequest", response: "BillDetail", status: "201"},
	"GET /bills/:id/invoice":        {summary: "Render a bill's invoice", tag: "billing", produces: []string{"text/plain", "application/pdf"}, query: []queryParam{{"format", "string", "text (default) or document"}, {"download", "boolean", "Send as an attachment"}}},
	"GET /reports/exports":          {summary: "List CSV exports", tag: "reports", response: "ExportList"},
	"GET /reports/exports/:id":      {summary: "Download a CSV export", tag: "reports", produces: []string{"text/csv"}},
	"POST /sandbox/seed":            {summary: "Seed sample data", tag: "sandbox", response: "SeedResult"},
}

var pathParam = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)

// GenerateSpec produces the OpenAPI 3.0 document as a map. Only routes under
// the generator's base path are documented.
func (g *Generator) GenerateSpec() map[string]interface{} {
	base := basePath(g.baseURL)
	routes := g.routes.Routes()
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})

	paths := make(map[string]interface{})
	for _, r := range routes {
		if !strings.HasPrefix(r.Path, base+"/") {
			continue
		}
		rel := strings.TrimPrefix(r.Path, base)
		op, ok := operations[r.Method+" "+rel]
		if !ok {
			continue
		}
		key := pathParam.ReplaceAllString(rel, "{$1}")
		item, _ := paths[key].(map[string]interface{})
		if item == nil {
			item = make(map[string]interface{})
			paths[key] = item
		}
		item[strings.ToLower(r.Method)] = buildOperation(r.Method, rel, op)
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":       "Clinic Billing API",
			"version":     g.version,
			"description": "Patients, medicines, appointments, bills and invoices.",
		},
		"servers": []map[string]interface{}{
			{"url": g.baseURL},
		},
		"paths": paths,
		"components": map[string]interface{}{
			"schemas": componentSchemas(),
		},
	}
}

func basePath(baseURL string) string {
	if i := strings.Index(baseURL, "://"); i >= 0 {
		rest := baseURL[i+3:]
		if j := strings.IndexByte(rest, '/'); j >= 0 {
			return strings.TrimSuffix(rest[j:], "/")
		}
		return ""
	}
	return strings.TrimSuffix(baseURL, "/")
}

func buildOperation(method, rel string, op operation) map[string]interface{} {
	var params []map[string]interface{}
	for _, m := range pathParam.FindAllStringSubmatch(rel, -1) {
		params = append(params, map[string]interface{}{
			"name":     m[1],
			"in":       "path",
			"required": true,
			"schema":   map[string]interface{}{"type": "integer", "format": "int64"},
		})
	}
	for _, q := range op.query {
		params = append(params, map[string]interface{}{
			"name":        q.name,
			"in":          "query",
			"description": q.description,
			"schema":      map[string]interface{}{"type": q.typ},
		})
	}

	status := op.status
	if status == "" {
		status = "200"
	}
	responses := map[string]interface{}{
		status: buildResponse(op),
		"400":  errorResponse("Invalid input"),
		"500":  errorResponse("Storage failure"),
	}
	if strings.Contains(rel, ":id") || op.body != "" {
		responses["404"] = errorResponse("Referenced record not found")
	}
	if len(op.produces) > 1 {
		responses["501"] = errorResponse("Format not available in this build")
	}

	out := map[string]interface{}{
		"summary":     op.summary,
		"operationId": operationID(method, rel),
		"tags":        []string{op.tag},
		"responses":   responses,
	}
	if len(params) > 0 {
		out["parameters"] = params
	}
	if op.body != "" {
		out["requestBody"] = map[string]interface{}{
			"required": true,
			"content": map[string]interface{}{
				"application/json": map[string]interface{}{
					"schema": ref(op.body),
				},
			},
		}
	}
	return out
}

func buildResponse(op operation) map[string]interface{} {
	content := make(map[string]interface{})
	if op.response != "" {
		content["application/json"] = map[string]interface{}{"schema": ref(op.response)}
	}
	for _, ct := range op.produces {
		content[ct] = map[string]interface{}{
			"schema": map[string]interface{}{"type": "string", "format": "binary"},
		}
	}
	return map[string]interface{}{"description": op.summary, "content": content}
}

func errorResponse(description string) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{"schema": ref("Error")},
		},
	}
}

// operationID turns "GET /bills/:id/invoice" into "getBillsIdInvoice".
func operationID(method, rel string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for _, seg := range strings.Split(rel, "/") {
		seg = strings.TrimPrefix(seg, ":")
		if seg == "" {
			continue
		}
		b.WriteString(strings.ToUpper(seg[:1]) + seg[1:])
	}
	return b.String()
}

func ref(name string) map[string]interface{} {
	return map[string]interface{}{"$ref": "#/components/schemas/" + name}
}

func prop(typ string, extra ...string) map[string]interface{} {
	p := map[string]interface{}{"type": typ}
	if len(extra) > 0 {
		p["format"] = extra[0]
	}
	return p
}

// money is a decimal string with two places, e.g. "305.00".
var money = map[string]interface{}{"type": "string", "pattern": `^-?\d+(\.\d+)?$`, "example": "305.00"}

func object(required []string, props map[string]interface{}) map[string]interface{} {
	s := map[string]interface{}{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func page(item string) map[string]interface{} {
	return object(nil, map[string]interface{}{
		"data":     map[string]interface{}{"type": "array", "items": ref(item)},
		"total":    prop("integer"),
		"limit":    prop("integer"),
		"offset":   prop("integer"),
		"has_more": prop("boolean"),
		"links": object(nil, map[string]interface{}{
			"self":     prop("string"),
			"next":     prop("string"),
			"previous": prop("string"),
		}),
	})
}

func componentSchemas() map[string]interface{} {
	return map[string]interface{}{
		"Error": object([]string{"message"}, map[string]interface{}{
			"message": prop("string"),
		}),
		"Patient": object([]string{"name"}, map[string]interface{}{
			"id":         prop("integer", "int64"),
			"name":       prop("string"),
			"age":        prop("integer"),
			"gender":     prop("string"),
			"phone":      prop("string"),
			"address":    prop("string"),
			"created_at": prop("string", "date-time"),
		}),
		"Medicine": object([]string{"name"}, map[string]interface{}{
			"id":          prop("integer", "int64"),
			"name":        prop("string"),
			"description": prop("string"),
			"price":       money,
			"stock":       prop("integer"),
		}),
		"Appointment": object([]string{"patient_id", "doctor", "date", "time"}, map[string]interface{}{
			"id":           prop("integer", "int64"),
			"patient_id":   prop("integer", "int64"),
			"patient_name": prop("string"),
			"doctor":       prop("string"),
			"date":         prop("string", "date"),
			"time":         map[string]interface{}{"type": "string", "example": "10:00"},
			"reason":       prop("string"),
			"status":       map[string]interface{}{"type": "string", "enum": []string{"Scheduled", "Cancelled"}},
			"created_at":   prop("string", "date-time"),
		}),
		"Bill": object(nil, map[string]interface{}{
			"id":         prop("integer", "int64"),
			"patient_id": prop("integer", "int64"),
			"total":      money,
			"created_at": prop("string", "date-time"),
		}),
		"BillItem": object(nil, map[string]interface{}{
			"id":          prop("integer", "int64"),
			"bill_id":     prop("integer", "int64"),
			"line_no":     prop("integer"),
			"description": prop("string"),
			"quantity":    prop("integer"),
			"unit_price":  money,
			"amount":      money,
		}),
		"ItemInput": object([]string{"description", "quantity", "unit_price"}, map[string]interface{}{
			"description": prop("string"),
			"quantity":    map[string]interface{}{"type": "integer", "minimum": 1},
			"unit_price":  money,
		}),
		"CreateBillRequest": object([]string{"patient_id", "items"}, map[string]interface{}{
			"patient_id": prop("integer", "int64"),
			"items":      map[string]interface{}{"type": "array", "minItems": 1, "items": ref("ItemInput")},
		}),
		"BillDetail": object(nil, map[string]interface{}{
			"bill":    ref("Bill"),
			"items":   map[string]interface{}{"type": "array", "items": ref("BillItem")},
			"patient": ref("Patient"),
		}),
		"BillSummary": object(nil, map[string]interface{}{
			"id":           prop("integer", "int64"),
			"patient_id":   prop("integer", "int64"),
			"patient_name": prop("string"),
			"total":        money,
			"item_count":   prop("integer"),
			"created_at":   prop("string", "date-time"),
		}),
		"ExportList": map[string]interface{}{
			"type": "array",
			"items": object(nil, map[string]interface{}{
				"id":          prop("string"),
				"name":        prop("string"),
				"description": prop("string"),
				"headers":     map[string]interface{}{"type": "array", "items": prop("string")},
				"file_name":   prop("string"),
			}),
		},
		"SeedResult": object(nil, map[string]interface{}{
			"skipped":      prop("boolean"),
			"patients":     prop("integer"),
			"medicines":    prop("integer"),
			"appointments": prop("integer"),
			"bills":        prop("integer"),
		}),
		"PatientPage":     page("Patient"),
		"MedicinePage":    page("Medicine"),
		"AppointmentPage": page("Appointment"),
		"BillPage":        page("BillSummary"),
	}
}

// ── Swagger UI ──────────────────────────────────────────────────────────

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Clinic Billing API - Swagger UI</title>
  <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" >
  <style>
    html { box-sizing: border-box; overflow-y: scroll; }
    *, *:before, *:after { box-sizing: inherit; }
    body { margin: 0; background: #fafafa; }
  </style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: "openapi.json",
      dom_id: '#swagger-ui',
      deepLinking: true,
      presets: [
        SwaggerUIBundle.presets.apis,
        SwaggerUIBundle.SwaggerUIStandalonePreset
      ],
      layout: "BaseLayout"
    })
  </script>
</body>
</html>`

// RegisterRoutes registers the OpenAPI endpoints.
func (g *Generator) RegisterRoutes(apiGroup *echo.Group) {
	apiGroup.GET("/openapi.json", func(c echo.Context) error {
		return c.JSON(http.StatusOK, g.GenerateSpec())
	})
	apiGroup.GET("/docs", func(c echo.Context) error {
		return c.HTML(http.StatusOK, swaggerUIHTML)
	})
}
