package clients

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/types"
)

const (
	defaultENABrowserBaseURL = "https://www.ebi.ac.uk/ena/browser/api"
	defaultENAPortalBaseURL  = "https://www.ebi.ac.uk/ena/portal/api"
)

// ENABrowserClient resolves lineages from the ENA browser XML records.
// Second source in the taxonomy chain.
type ENABrowserClient struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

func NewENABrowserClient(baseURL string, timeout time.Duration, log *logger.Logger) *ENABrowserClient {
	if baseURL == "" {
		baseURL = defaultENABrowserBaseURL
	}
	return &ENABrowserClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
		log:     log.With("client", "ENABrowserClient"),
	}
}

func (c *ENABrowserClient) Name() string { return "ena-browser" }

type enaTaxonXML struct {
	XMLName xml.Name `xml:"TAXON_SET"`
	Taxon   struct {
		TaxID          int64  `xml:"taxId,attr"`
		ScientificName string `xml:"scientificName,attr"`
		Rank           string `xml:"rank,attr"`
		Lineage        struct {
			Taxa []struct {
				TaxID          int64  `xml:"taxId,attr"`
				ScientificName string `xml:"scientificName,attr"`
				Rank           string `xml:"rank,attr"`
			} `xml:"TAXON"`
		} `xml:"LINEAGE"`
	} `xml:"TAXON"`
}

// Lineage parses the browser XML record. The XML lists ancestors leaf
// side first and includes the universal root, so the chain is reversed
// and the root dropped before returning.
func (c *ENABrowserClient) Lineage(ctx context.Context, taxid int64) ([]*types.TaxonNode, error) {
	resp, err := get(ctx, c.client, fmt.Sprintf("%s/xml/%d", c.baseURL, taxid))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var doc enaTaxonXML
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode taxon xml for %d: %w", taxid, err)
	}
	if doc.Taxon.TaxID == 0 {
		return nil, fmt.Errorf("taxid %d: empty taxon record", taxid)
	}

	ancestors := doc.Taxon.Lineage.Taxa
	lineage := make([]*types.TaxonNode, 0, len(ancestors)+1)
	for i := len(ancestors) - 1; i >= 0; i-- {
		a := ancestors[i]
		if a.TaxID == rootTaxid {
			continue
		}
		lineage = append(lineage, &types.TaxonNode{
			Taxid:          a.TaxID,
			ScientificName: a.ScientificName,
			Rank:           a.Rank,
		})
	}
	lineage = append(lineage, &types.TaxonNode{
		Taxid:          doc.Taxon.TaxID,
		ScientificName: doc.Taxon.ScientificName,
		Rank:           doc.Taxon.Rank,
	})
	return lineage, nil
}

// ENAPortalClient resolves lineages from the ENA portal search API.
// Last source in the taxonomy chain.
type ENAPortalClient struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

func NewENAPortalClient(baseURL string, timeout time.Duration, log *logger.Logger) *ENAPortalClient {
	if baseURL == "" {
		baseURL = defaultENAPortalBaseURL
	}
	return &ENAPortalClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
		log:     log.With("client", "ENAPortalClient"),
	}
}

func (c *ENAPortalClient) Name() string { return "ena-portal" }

type enaPortalTaxon struct {
	TaxID          string `json:"tax_id"`
	ScientificName string `json:"scientific_name"`
	Rank           string `json:"rank"`
}

// Lineage walks the portal's taxon records from the leaf to the root
// one record at a time, following tax_lineage membership.
func (c *ENAPortalClient) Lineage(ctx context.Context, taxid int64) ([]*types.TaxonNode, error) {
	q := url.Values{}
	q.Set("result", "taxon")
	q.Set("query", fmt.Sprintf("tax_lineage(%d)", taxid))
	q.Set("fields", "tax_id,scientific_name,rank")
	q.Set("format", "json")

	var records []enaPortalTaxon
	searchURL := c.baseURL + "/search?" + q.Encode()
	if err := getJSON(ctx, c.client, searchURL, &records); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("taxid %d: no portal taxon records", taxid)
	}

	// The portal returns ancestors leaf side first.
	lineage := make([]*types.TaxonNode, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		id, err := strconv.ParseInt(records[i].TaxID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("taxid %d: bad portal tax_id %q", taxid, records[i].TaxID)
		}
		if id == rootTaxid {
			continue
		}
		lineage = append(lineage, &types.TaxonNode{
			Taxid:          id,
			ScientificName: records[i].ScientificName,
			Rank:           records[i].Rank,
		})
	}
	if len(lineage) == 0 || lineage[len(lineage)-1].Taxid != taxid {
		return nil, fmt.Errorf("taxid %d: portal lineage does not end at the queried taxon", taxid)
	}
	return lineage, nil
}
