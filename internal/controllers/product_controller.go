package controllers

import (
	"net/http"
	"strings"

	"github.com/RealZimboGuy/catalogflow/internal/util"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/models"
)

// ProductController administers product classes, parameters, products and
// their parameter values.
type ProductController struct {
	AuthController
	Products ProductAdmin
}

func NewProductController(products ProductAdmin, actors ActorAuthenticator) *ProductController {
	return &ProductController{Products: products, AuthController: AuthController{Actors: actors}}
}

func (c *ProductController) handleListClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := c.Products.ListClasses(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]models.ProductClassApi, 0, len(classes))
	for _, cl := range classes {
		out = append(out, mapClass(cl))
	}
	util.WriteJSONResponse(w, http.StatusOK, out)
}

func (c *ProductController) handleSaveClass(w http.ResponseWriter, r *http.Request) {
	req, err := util.DecodeJSONBody[models.ProductClassApi](r)
	if err != nil {
		badRequest(w, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Code) == "" || strings.TrimSpace(req.Name) == "" {
		badRequest(w, "code and name are required")
		return
	}
	class := domain.ProductClass{ID: req.ID, Code: req.Code, Name: req.Name, ParentID: nullInt64(req.ParentID)}
	if err := c.Products.SaveClass(r.Context(), &class); err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, mapClass(class))
}

func (c *ProductController) handleListParameters(w http.ResponseWriter, r *http.Request) {
	params, err := c.Products.ListParameters(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]models.ParameterApi, 0, len(params))
	for _, p := range params {
		out = append(out, mapParameter(p))
	}
	util.WriteJSONResponse(w, http.StatusOK, out)
}

func (c *ProductController) handleSaveParameter(w http.ResponseWriter, r *http.Request) {
	req, err := util.DecodeJSONBody[models.ParameterApi](r)
	if err != nil {
		badRequest(w, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Code) == "" || strings.TrimSpace(req.Name) == "" {
		badRequest(w, "code and name are required")
		return
	}
	p := domain.Parameter{ID: req.ID, Code: req.Code, Name: req.Name, Type: domain.ParameterType(req.Type)}
	if err := c.Products.SaveParameter(r.Context(), &p); err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, mapParameter(p))
}

// handleSaveConstraint sets the limits of a parameter for one class.
func (c *ProductController) handleSaveConstraint(w http.ResponseWriter, r *http.Request) {
	classID, err := util.PathInt64(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	parID, err := util.PathInt64(r, "parId")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	req, err := util.DecodeJSONBody[models.ConstraintApi](r)
	if err != nil {
		badRequest(w, "invalid JSON payload")
		return
	}
	err = c.Products.SaveConstraint(r.Context(), domain.ParameterConstraint{
		ClassID:       classID,
		ParameterID:   parID,
		MinVal:        nullString(req.MinVal),
		MaxVal:        nullString(req.MaxVal),
		Pattern:       nullString(req.Pattern),
		AllowedValues: nullString(req.AllowedValues),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, req)
}

func (c *ProductController) handleSaveProduct(w http.ResponseWriter, r *http.Request) {
	req, err := util.DecodeJSONBody[models.ProductApi](r)
	if err != nil {
		badRequest(w, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.ID) == "" || req.ClassID <= 0 {
		badRequest(w, "id and classId are required")
		return
	}
	if err := c.Products.SaveProduct(r.Context(), domain.Product{ID: req.ID, Name: req.Name, ClassID: req.ClassID}); err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, req)
}

func (c *ProductController) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := c.Products.FindProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, models.ProductApi{ID: p.ID, Name: p.Name, ClassID: p.ClassID})
}

func (c *ProductController) handleListValues(w http.ResponseWriter, r *http.Request) {
	values, err := c.Products.ListValues(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]models.ParameterValueApi, 0, len(values))
	for _, v := range values {
		out = append(out, mapValue(v))
	}
	util.WriteJSONResponse(w, http.StatusOK, out)
}

// handleSaveValue sets one parameter value of a product. A null value
// clears it.
func (c *ProductController) handleSaveValue(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")
	parID, err := util.PathInt64(r, "parId")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	req, err := util.DecodeJSONBody[models.ParameterValueApi](r)
	if err != nil {
		badRequest(w, "invalid JSON payload")
		return
	}
	if _, err := c.Products.FindProduct(r.Context(), productID); err != nil {
		writeError(w, r, err)
		return
	}
	v := domain.ParameterValue{ProductID: productID, ParameterID: parID, Val: nullString(req.Value), Note: nullString(req.Note)}
	if err := c.Products.SaveValue(r.Context(), v); err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, mapValue(v))
}
