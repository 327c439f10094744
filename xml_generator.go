package plist

import (
	"bufio"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"
)

const (
	xmlHEADER     string = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"
	xmlDOCTYPE           = `<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">` + "\n"
	xmlArrayTag          = "array"
	xmlDataTag           = "data"
	xmlDateTag           = "date"
	xmlDictTag           = "dict"
	xmlFalseTag          = "false"
	xmlIntegerTag        = "integer"
	xmlKeyTag            = "key"
	xmlPlistTag          = "plist"
	xmlRealTag           = "real"
	xmlStringTag         = "string"
	xmlTrueTag           = "true"
)

func formatXMLFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

type xmlPlistGenerator struct {
	*bufio.Writer

	indent     string
	depth      int
	putNewline bool
}

func (p *xmlPlistGenerator) Indent(i string) {
	p.indent = i
}

func (p *xmlPlistGenerator) writeIndent() {
	if len(p.indent) == 0 {
		return
	}
	if p.putNewline {
		p.WriteByte('\n')
	}
	p.putNewline = true
	for i := 0; i < p.depth; i++ {
		p.WriteString(p.indent)
	}
}

func (p *xmlPlistGenerator) generateDocument(root Value) error {
	p.WriteString(xmlHEADER)
	p.WriteString(xmlDOCTYPE)

	p.WriteString(fmt.Sprintf("<%s version=\"1.0\">", xmlPlistTag))
	p.putNewline = true
	if err := p.writePlistValue(root); err != nil {
		return err
	}
	if len(p.indent) > 0 {
		p.WriteByte('\n')
	}
	p.WriteString(fmt.Sprintf("</%s>", xmlPlistTag))
	return p.Flush()
}

func (p *xmlPlistGenerator) openTag(n string) {
	p.writeIndent()
	p.WriteString(fmt.Sprintf("<%s>", n))
}

func (p *xmlPlistGenerator) closeTag(n string) {
	p.WriteString(fmt.Sprintf("</%s>", n))
}

func (p *xmlPlistGenerator) element(n string, value string) error {
	p.openTag(n)
	if err := xml.EscapeText(p.Writer, []byte(value)); err != nil {
		return err
	}
	p.closeTag(n)
	return nil
}

func (p *xmlPlistGenerator) writeDictionary(dict Dictionary) error {
	p.openTag(xmlDictTag)
	p.depth++
	for _, kv := range dict {
		k, ok := stringOf(kv.Key)
		if !ok {
			return &UnsupportedTypeError{Type: kv.Key.typeName() + " dictionary key"}
		}
		if err := p.element(xmlKeyTag, k); err != nil {
			return err
		}
		if err := p.writePlistValue(kv.Value); err != nil {
			return err
		}
	}
	p.depth--
	p.writeIndent()
	p.closeTag(xmlDictTag)
	return nil
}

// writeArray also writes sets: XML property lists have no set element.
func (p *xmlPlistGenerator) writeArray(values []Value) error {
	p.openTag(xmlArrayTag)
	p.depth++
	for _, v := range values {
		if err := p.writePlistValue(v); err != nil {
			return err
		}
	}
	p.depth--
	p.writeIndent()
	p.closeTag(xmlArrayTag)
	return nil
}

func (p *xmlPlistGenerator) writePlistValue(pval Value) error {
	switch pval := pval.(type) {
	case Null:
		// XML property lists cannot express null.
		return nil
	case ASCIIString:
		return p.element(xmlStringTag, string(pval))
	case UnicodeString:
		return p.element(xmlStringTag, string(pval))
	case Integer:
		return p.element(xmlIntegerTag, strconv.FormatInt(int64(pval), 10))
	case Real:
		return p.element(xmlRealTag, formatXMLFloat(float64(pval)))
	case Boolean:
		tag := xmlFalseTag
		if pval {
			tag = xmlTrueTag
		}
		p.openTag(tag)
		p.closeTag(tag)
		return nil
	case Data:
		return p.element(xmlDataTag, base64.StdEncoding.EncodeToString(pval))
	case Date:
		return p.element(xmlDateTag, pval.Time().In(time.UTC).Format(time.RFC3339))
	case Dictionary:
		return p.writeDictionary(pval)
	case Array:
		return p.writeArray(pval)
	case Set:
		return p.writeArray(pval)
	case UID:
		return p.writeDictionary(Dictionary{{Key: ASCIIString("CF$UID"), Value: Integer(pval)}})
	}
	return unsupportedType(pval)
}

func newXMLPlistGenerator(w io.Writer) *xmlPlistGenerator {
	return &xmlPlistGenerator{Writer: bufio.NewWriter(w)}
}
