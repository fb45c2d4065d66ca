package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storage-bca/internal/api/models"
	"storage-bca/internal/policy"
)

var policyDescriptions = map[policy.Kind]string{
	policy.Direct:               "Reads available power and transmission capacity columns directly.",
	policy.WindCurve:            "Converts wind speed through a smoothed turbine power curve; export is the transformer rating minus the capacity constraint.",
	policy.GenerationConstraint: "Potential generation minus the generation constraint; export is the transformer rating when unconstrained, else metered output.",
	policy.Hybrid:               "Wind output plus a solar profile scaled to installed MWp; export is the transmission ceiling minus the capacity constraint.",
}

// PolicyHandler handles policy listing requests
type PolicyHandler struct {
	params policy.Params
}

func NewPolicyHandler(params policy.Params) *PolicyHandler {
	return &PolicyHandler{params: params}
}

// ListPolicies handles GET /api/v1/policies
func (h *PolicyHandler) ListPolicies(c *gin.Context) {
	out := make([]models.PolicyInfo, 0, len(policy.Kinds()))
	for _, kind := range policy.Kinds() {
		info := models.PolicyInfo{
			Name:            kind.String(),
			Description:     policyDescriptions[kind],
			RequiredColumns: policy.RequiredColumns(kind),
			Parameters:      h.parameters(kind),
		}
		out = append(out, info)
	}
	c.JSON(http.StatusOK, gin.H{"policies": out})
}

func (h *PolicyHandler) parameters(kind policy.Kind) []models.ParameterInfo {
	switch kind {
	case policy.WindCurve:
		t := h.params.Turbine
		return []models.ParameterInfo{
			{Name: "transformer_rating_mw", Type: "float", Description: "Export transformer rating (MW)", Default: policy.DefaultWindTransformerMW},
			{Name: "turbine.count", Type: "int", Description: "Number of turbines", Default: t.Count},
			{Name: "turbine.rated_power_mw", Type: "float", Description: "Rated output per turbine (MW)", Default: t.RatedPowerMW},
			{Name: "turbine.cut_in_ms", Type: "float", Description: "Cut-in wind speed (m/s)", Default: t.CutInMS},
			{Name: "turbine.rated_speed_ms", Type: "float", Description: "Rated wind speed (m/s)", Default: t.RatedSpeedMS},
			{Name: "turbine.cut_out_ms", Type: "float", Description: "Cut-out wind speed (m/s)", Default: t.CutOutMS},
		}
	case policy.GenerationConstraint:
		return []models.ParameterInfo{
			{Name: "transformer_rating_mw", Type: "float", Description: "Export rating in unconstrained periods (MW)", Default: policy.DefaultConstraintTransformerMW},
		}
	case policy.Hybrid:
		return []models.ParameterInfo{
			{Name: "export_transmission_capacity_mw", Type: "float", Description: "Export ceiling before capacity constraints (MW)", Default: h.params.ExportCapacityMW},
			{Name: "reference_solar_mwp", Type: "float", Description: "Installed capacity behind the solar_power profile (MWp)", Default: h.params.ReferenceSolarMWp},
		}
	default:
		return []models.ParameterInfo{}
	}
}
