package xcal

import (
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
)

// untilLayout is the xCal date-time form of UNTIL.
const untilLayout = "2006-01-02T15:04:05Z"

// Recur holds the parts of a recurrence rule in the order xCal expects them.
// Zero values are omitted.
type Recur struct {
	Freq       string
	Until      time.Time
	Count      int
	Interval   int
	ByDay      []string
	ByMonthDay []int
	ByMonth    []int
	BySetPos   []int
	WeekStart  string
}

// Encode builds the <recur> element. Multi-valued parts become repeated child elements.
func (r Recur) Encode() (*etree.Element, error) {
	if r.Freq == "" {
		return nil, fmt.Errorf("xcal: recur without freq")
	}
	if !r.Until.IsZero() && r.Count > 0 {
		return nil, fmt.Errorf("xcal: recur with both until and count")
	}

	elem := etree.NewElement("recur")
	addText(elem, "freq", r.Freq)
	if !r.Until.IsZero() {
		addText(elem, "until", r.Until.UTC().Format(untilLayout))
	}
	if r.Count > 0 {
		addText(elem, "count", strconv.Itoa(r.Count))
	}
	if r.Interval > 1 {
		addText(elem, "interval", strconv.Itoa(r.Interval))
	}
	for _, day := range r.ByDay {
		addText(elem, "byday", day)
	}
	addInts(elem, "bymonthday", r.ByMonthDay)
	addInts(elem, "bymonth", r.ByMonth)
	addInts(elem, "bysetpos", r.BySetPos)
	if r.WeekStart != "" {
		addText(elem, "wkst", r.WeekStart)
	}
	return elem, nil
}

// Marshal writes the rule as a standalone, indented xCal fragment.
func (r Recur) Marshal() (string, error) {
	elem, err := r.Encode()
	if err != nil {
		return "", err
	}
	doc := etree.NewDocument()
	doc.SetRoot(elem)
	AddNamespace(doc)
	doc.Indent(2)
	return doc.WriteToString()
}

func addText(parent *etree.Element, tag, text string) {
	child := parent.CreateElement(tag)
	child.SetText(text)
}

func addInts(parent *etree.Element, tag string, values []int) {
	for _, v := range values {
		addText(parent, tag, strconv.Itoa(v))
	}
}
