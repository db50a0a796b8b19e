package ingest

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"merchantconsole/internal/domain"
	"merchantconsole/internal/model"
)

var (
	firstNames = []string{"Aarav", "Riya", "Kunal", "Sneha", "Vikram", "Ananya", "Rohan", "Isha", "Jane", "John"}
	lastNames  = []string{"Mehra", "Sharma", "Verma", "Pillai", "Iyer", "Kapoor", "Doe", "Smith", "Nair", "Rao"}
	products   = []string{"Smart TV 55\"", "Bluetooth Speaker", "Noise Cancelling Headphones", "Air Fryer", "Laptop 14\"", "Espresso Machine", "Smartwatch"}
	planTypes  = []string{"Extended Warranty", "Accidental Damage", "Shipping Protection"}
	contractSt = []string{"Active", "Active", "Active", "Expired", "Cancelled"}
	claimTypes = []string{"Accidental", "Extended", "Shipping"}
	claimSt    = []string{"Pending", "Approved", "Denied", "In Review"}
	damages    = []string{"cracked screen", "water damage", "no power", "lost in transit", "broken hinge"}
	userSt     = []string{"Active", "Active", "Deactivated", "Pending"}
)

// Generator produces plausible merchant records for the demo backend and
// the sample data tool.
type Generator struct {
	rnd  *rand.Rand
	base time.Time
}

func NewGenerator(seed int64, base time.Time) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed)), base: base.UTC()}
}

func (g *Generator) pick(xs []string) string { return xs[g.rnd.Intn(len(xs))] }

func (g *Generator) person() (string, string) {
	f, l := g.pick(firstNames), g.pick(lastNames)
	return f + " " + l, strings.ToLower(f+"."+l) + "@example.com"
}

func (g *Generator) when() time.Time {
	return g.base.Add(-time.Duration(g.rnd.Intn(365*24)) * time.Hour)
}

// Records generates n records of domain d. Products yield n products with
// one to three variants each.
func (g *Generator) Records(d domain.Name, n int) []model.Record {
	var out []model.Record
	for i := 0; i < n; i++ {
		switch d {
		case domain.Contracts:
			out = append(out, g.contract(i))
		case domain.Claims:
			out = append(out, g.claim(i))
		case domain.Leads:
			out = append(out, g.lead(i))
		case domain.Products:
			out = append(out, g.product(i)...)
		case domain.Users:
			out = append(out, g.user(i))
		}
	}
	return out
}

// Record generates one more record of d with a fresh id.
func (g *Generator) Record(d domain.Name) model.Record {
	recs := g.Records(d, 1)
	r := recs[0]
	r.ID = uuid.NewString()
	for _, k := range []string{"contractId", "claimId", "id"} {
		if _, ok := r.Fields[k]; ok {
			r.Fields[k] = r.ID
		}
	}
	return r
}

func (g *Generator) contract(i int) model.Record {
	name, email := g.person()
	id := fmt.Sprintf("POL-%05d", i+1)
	return model.Record{ID: id, Fields: map[string]any{
		"transactionId": fmt.Sprintf("TX-%06d", 100000+g.rnd.Intn(900000)),
		"contractId":    id,
		"status":        g.pick(contractSt),
		"type":          g.pick(planTypes),
		"date":          g.when().Format(time.RFC3339),
		"customerId":    fmt.Sprintf("CUS-%04d", g.rnd.Intn(10000)),
		"customerName":  name,
		"customerEmail": email,
		"productName":   g.pick(products),
		"price":         float64(499 + g.rnd.Intn(50)*500),
	}}
}

func (g *Generator) claim(i int) model.Record {
	name, email := g.person()
	id := fmt.Sprintf("CLM-%05d", i+1)
	dmg := []string{g.pick(damages)}
	if g.rnd.Intn(3) == 0 {
		dmg = append(dmg, g.pick(damages))
	}
	return model.Record{ID: id, Fields: map[string]any{
		"type":          g.pick(claimTypes),
		"contractId":    fmt.Sprintf("POL-%05d", g.rnd.Intn(500)+1),
		"claimId":       id,
		"customerName":  name,
		"customerEmail": email,
		"failureType":   strings.Join(dmg, ", "),
		"incidentDate":  g.when().Format("2006-01-02"),
		"status":        g.pick(claimSt[:3]),
	}}
}

func (g *Generator) lead(i int) model.Record {
	name, email := g.person()
	return model.Record{ID: fmt.Sprintf("LEAD-%05d", i+1), Fields: map[string]any{
		"transactionId":   fmt.Sprintf("TX-%06d", 100000+g.rnd.Intn(900000)),
		"transactionDate": g.when().Format("2006-01-02"),
		"customerName":    name,
		"customerEmail":   email,
		"productName":     g.pick(products),
		"quantity":        1 + g.rnd.Intn(3),
		"lineItemPrice":   float64(499 + g.rnd.Intn(40)*250),
		"status":          "Pending",
	}}
}

func (g *Generator) product(i int) []model.Record {
	pid := fmt.Sprint(7000000 + i)
	title := g.pick(products)
	offered := g.rnd.Intn(2) == 0
	n := 1 + g.rnd.Intn(3)
	out := make([]model.Record, 0, n)
	for v := 0; v < n; v++ {
		id := fmt.Sprintf("VAR-%05d-%d", i+1, v+1)
		name := title
		if n > 1 {
			name = fmt.Sprintf("%s / %s", title, []string{"Black", "White", "Silver"}[v])
		}
		out = append(out, model.Record{ID: id, Fields: map[string]any{
			"id":             id,
			"name":           name,
			"productId":      pid,
			"price":          float64(999 + g.rnd.Intn(60)*250),
			"imageUrl":       "",
			"displayOffered": offered,
		}})
	}
	return out
}

func (g *Generator) user(i int) model.Record {
	f, l := g.pick(firstNames), g.pick(lastNames)
	st := g.pick(userSt)
	return model.Record{ID: fmt.Sprintf("USR-%04d", i+1), Fields: map[string]any{
		"firstName": f,
		"lastName":  l,
		"email":     strings.ToLower(f+"."+l) + "@example.com",
		"status":    st,
		"active":    st == "Active",
	}}
}
