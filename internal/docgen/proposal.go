package docgen

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cloudzeus/kimoncrm-sub005/internal/config"
	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	"github.com/fumiama/go-docx"
)

const ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// ProposalData everything rendered into a proposal document.
type ProposalData struct {
	Company     config.CompanyConfig
	Survey      *domain.SiteSurvey
	Customer    *domain.Customer
	Tree        *domain.CablingTree
	BOM         *domain.BOM
	GeneratedAt time.Time
}

// A4 text width in twips with default margins.
const tableWidth = 9000

const headerFill = "E6F3FF"

type proposal struct {
	doc *docx.Docx
}

func (p *proposal) heading(text string, size string) {
	p.doc.AddParagraph().AddText(text).Bold().Size(size)
}

func (p *proposal) line(text string) *docx.Run {
	return p.doc.AddParagraph().AddText(text)
}

func (p *proposal) labelled(label, value string) {
	if value == "" {
		return
	}
	para := p.doc.AddParagraph()
	para.AddText(label + ": ").Bold()
	para.AddText(value)
}

// table renders a header row and data rows; an empty rows slice renders nothing.
func (p *proposal) table(header []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	tbl := p.doc.AddTable(len(rows)+1, len(header), tableWidth, nil)
	for j, h := range header {
		c := tbl.TableRows[0].TableCells[j]
		c.Shade("clear", "auto", headerFill)
		c.AddParagraph().AddText(h).Bold()
	}
	for i, r := range rows {
		for j, v := range r {
			tbl.TableRows[i+1].TableCells[j].AddParagraph().AddText(v)
		}
	}
	p.doc.AddParagraph()
}

func devicesSummary(devices []domain.CablingDevice) string {
	n := 0
	for _, d := range devices {
		n += d.Quantity
	}
	return strconv.Itoa(n)
}

func brandModel(d domain.CablingDevice) string {
	return strings.TrimSpace(str(d.Brand) + " " + str(d.Model))
}

func deviceRows(where string, devices []domain.CablingDevice) [][]string {
	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		rows = append(rows, []string{where, d.Name, str(d.Type), brandModel(d), strconv.Itoa(d.Quantity)})
	}
	return rows
}

func rackRows(racks []domain.CablingRack) [][]string {
	rows := make([][]string, 0, len(racks))
	for _, r := range racks {
		units := ""
		if r.Units != nil {
			units = strconv.Itoa(*r.Units) + "U"
		}
		rows = append(rows, []string{r.Name, str(r.Location), units, devicesSummary(r.Devices)})
	}
	return rows
}

var (
	rackHeader   = []string{"Rack", "Location", "Size", "Devices"}
	roomHeader   = []string{"Room", "Type", "Outlets", "Devices"}
	deviceHeader = []string{"Location", "Device", "Type", "Brand / Model", "Qty"}
	bomHeader    = []string{"#", "Item", "Brand / Model", "Qty", "Unit Price", "Total"}
)

func (p *proposal) building(b domain.CablingBuilding) {
	title := b.Name
	if b.Code != nil && *b.Code != "" {
		title += " (" + *b.Code + ")"
	}
	p.heading(title, "28")
	p.labelled("Address", str(b.Address))
	p.labelled("Notes", str(b.Notes))

	if len(b.CentralRacks) > 0 {
		p.heading("Central racks", "24")
		p.table(rackHeader, rackRows(b.CentralRacks))
		var devices [][]string
		for _, r := range b.CentralRacks {
			devices = append(devices, deviceRows(r.Name, r.Devices)...)
		}
		p.table(deviceHeader, devices)
	}

	for _, f := range b.Floors {
		p.heading(fmt.Sprintf("%s (level %d)", f.Name, f.Level), "24")
		p.labelled("Notes", str(f.Notes))
		p.table(rackHeader, rackRows(f.Racks))

		rooms := make([][]string, 0, len(f.Rooms))
		for _, r := range f.Rooms {
			rooms = append(rooms, []string{r.Name, str(r.Type), strconv.Itoa(r.Outlets), devicesSummary(r.Devices)})
		}
		p.table(roomHeader, rooms)

		var devices [][]string
		for _, r := range f.Racks {
			devices = append(devices, deviceRows(r.Name, r.Devices)...)
		}
		for _, r := range f.Rooms {
			devices = append(devices, deviceRows(r.Name, r.Devices)...)
		}
		p.table(deviceHeader, devices)
	}
}

func (p *proposal) bom(bom *domain.BOM) {
	p.heading("Bill of materials", "28")
	if bom == nil || len(bom.Lines) == 0 {
		p.line("No equipment has been recorded for this survey.").Italic()
		return
	}
	rows := make([][]string, 0, len(bom.Lines)+1)
	for i, l := range bom.Lines {
		item := l.Name
		if l.Code != "" {
			item = l.Code + " " + l.Name
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1), item,
			strings.TrimSpace(l.Brand + " " + l.Model),
			strconv.Itoa(l.Quantity) + " " + l.Unit,
			l.UnitPrice.StringFixed(2), l.Total.StringFixed(2),
		})
	}
	rows = append(rows, []string{"", "Total", "", strconv.Itoa(bom.TotalQty), "", bom.GrandTotal.StringFixed(2)})
	p.table(bomHeader, rows)
	p.line("Prices exclude VAT.").Italic().Size("18")
}

// WriteProposal renders the proposal docx for a surveyed site.
func WriteProposal(w io.Writer, data ProposalData) (int64, error) {
	if data.Survey == nil {
		return 0, fmt.Errorf("proposal without survey: %w", domain.ErrInvalidArgument)
	}
	p := &proposal{doc: docx.New().WithDefaultTheme().WithA4Page()}

	if data.Company.Name != "" {
		p.doc.AddParagraph().Justification("right").AddText(data.Company.Name).Bold().Size("24")
		for _, v := range []string{data.Company.Address, vatLine(data.Company.VAT), data.Company.Phone, data.Company.Email} {
			if v != "" {
				p.doc.AddParagraph().Justification("right").AddText(v).Size("18").Color("808080")
			}
		}
	}

	p.doc.AddParagraph().Justification("center").AddText("Technical & Financial Proposal").Bold().Size("40")
	p.doc.AddParagraph().Justification("center").AddText(data.Survey.Title).Size("28")
	generated := data.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	p.doc.AddParagraph().Justification("center").AddText(generated.Format("02/01/2006")).Color("808080")
	p.doc.AddParagraph()

	p.heading("Customer", "28")
	if c := data.Customer; c != nil {
		p.labelled("Name", c.Name)
		p.labelled("VAT", str(c.AFM))
		p.labelled("Address", strings.TrimSpace(strings.Join([]string{str(c.Address), str(c.City), str(c.Zip)}, " ")))
		p.labelled("Email", str(c.Email))
		p.labelled("Phone", str(c.Phone))
	} else if data.Survey.CustomerName != nil {
		p.labelled("Name", *data.Survey.CustomerName)
	}

	p.heading("Site survey", "28")
	p.labelled("Type", string(data.Survey.Type))
	p.labelled("Status", string(data.Survey.Status))
	p.labelled("Site address", str(data.Survey.Address))
	if data.Survey.ScheduledAt != nil {
		p.labelled("Visit date", data.Survey.ScheduledAt.Format("02/01/2006"))
	}
	p.labelled("Description", str(data.Survey.Description))

	if data.Tree != nil && len(data.Tree.Buildings) > 0 {
		p.doc.AddParagraph().AddPageBreaks()
		p.heading("Infrastructure", "32")
		for _, b := range data.Tree.Buildings {
			p.building(b)
		}
	}

	p.doc.AddParagraph().AddPageBreaks()
	p.bom(data.BOM)

	p.doc.AddParagraph()
	p.heading("Notes", "28")
	p.line("This proposal is valid for 30 days from the date above.")
	p.line("Installation, configuration and testing of the listed equipment are included unless stated otherwise.")
	if data.Company.Name != "" {
		p.doc.AddParagraph()
		p.line("On behalf of " + data.Company.Name).Italic()
	}

	// docx.WriteTo does not report a byte count
	cw := &countingWriter{w: w}
	if _, err := p.doc.WriteTo(cw); err != nil {
		return cw.n, fmt.Errorf("failed to write proposal: %w", err)
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}

func vatLine(vat string) string {
	if vat == "" {
		return ""
	}
	return "VAT " + vat
}
