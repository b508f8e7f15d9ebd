package clients

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/types"
)

const defaultNCBIBaseURL = "https://api.ncbi.nlm.nih.gov/datasets/v2alpha"

// NCBIClient resolves taxon lineages from the NCBI datasets API. It is
// the first source in the taxonomy chain.
type NCBIClient struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

func NewNCBIClient(baseURL string, timeout time.Duration, log *logger.Logger) *NCBIClient {
	if baseURL == "" {
		baseURL = defaultNCBIBaseURL
	}
	return &NCBIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
		log:     log.With("client", "NCBIClient"),
	}
}

func (c *NCBIClient) Name() string { return "ncbi" }

type ncbiTaxonomyReport struct {
	Reports []struct {
		Taxonomy struct {
			TaxID                 int64 `json:"tax_id"`
			CurrentScientificName struct {
				Name string `json:"name"`
			} `json:"current_scientific_name"`
			Rank    string  `json:"rank"`
			Parents []int64 `json:"parents"`
		} `json:"taxonomy"`
	} `json:"reports"`
}

// Lineage fetches the taxon's report (which carries the ancestor taxid
// chain), then one batched report for the ancestors to learn their
// names and ranks. Result is ordered root to leaf, root excluded.
func (c *NCBIClient) Lineage(ctx context.Context, taxid int64) ([]*types.TaxonNode, error) {
	var report ncbiTaxonomyReport
	url := fmt.Sprintf("%s/taxonomy/taxon/%d/dataset_report", c.baseURL, taxid)
	if err := getJSON(ctx, c.client, url, &report); err != nil {
		return nil, err
	}
	if len(report.Reports) == 0 {
		return nil, fmt.Errorf("taxid %d: empty taxonomy report", taxid)
	}
	leaf := report.Reports[0].Taxonomy

	parents := make([]int64, 0, len(leaf.Parents))
	for _, p := range leaf.Parents {
		if p != rootTaxid {
			parents = append(parents, p)
		}
	}

	byID := make(map[int64]*types.TaxonNode, len(parents)+1)
	if len(parents) > 0 {
		ids := make([]string, len(parents))
		for i, p := range parents {
			ids[i] = strconv.FormatInt(p, 10)
		}
		var batch ncbiTaxonomyReport
		url = fmt.Sprintf("%s/taxonomy/taxon/%s/dataset_report", c.baseURL, strings.Join(ids, ","))
		if err := getJSON(ctx, c.client, url, &batch); err != nil {
			return nil, err
		}
		for _, r := range batch.Reports {
			byID[r.Taxonomy.TaxID] = &types.TaxonNode{
				Taxid:          r.Taxonomy.TaxID,
				ScientificName: r.Taxonomy.CurrentScientificName.Name,
				Rank:           r.Taxonomy.Rank,
			}
		}
	}

	// parents come ordered root-first from the API
	lineage := make([]*types.TaxonNode, 0, len(parents)+1)
	for _, p := range parents {
		node, ok := byID[p]
		if !ok {
			return nil, fmt.Errorf("taxid %d: ancestor %d missing from batch report", taxid, p)
		}
		lineage = append(lineage, node)
	}
	lineage = append(lineage, &types.TaxonNode{
		Taxid:          leaf.TaxID,
		ScientificName: leaf.CurrentScientificName.Name,
		Rank:           leaf.Rank,
	})
	return lineage, nil
}
