package controllers

import (
	"errors"
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	helper "github.com/lintang-b-s/navigatorx-intersection/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type intersectionAPI struct {
	intersectionService IntersectionService
	log                 *zap.Logger
	validate            *validator.Validate
	trans               ut.Translator
}

func New(intersectionService IntersectionService, log *zap.Logger) *intersectionAPI {
	validate, trans := newValidator()
	return &intersectionAPI{
		intersectionService: intersectionService,
		log:                 log,
		validate:            validate,
		trans:               trans,
	}
}

func (api *intersectionAPI) Routes(group *helper.RouteGroup) {
	group.GET("/intersections", api.nearestIntersections)
	group.GET("/intersections/next", api.nextIntersection)
}

func parseOptionalFloat(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.ParseFloat(value, 64)
}

func parseOptionalInt(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

// nearestIntersections. GET /api/intersections?lat=&lon=&radius=&limit=
// without radius only the closest node is analysed.
func (api *intersectionAPI) nearestIntersections(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request nearestIntersectionsRequest
		err     error
	)

	query := r.URL.Query()

	request.Lat, err = strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("lat is required and must be a valid float"))
		return
	}
	request.Lon, err = strconv.ParseFloat(query.Get("lon"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("lon is required and must be a valid float"))
		return
	}
	request.Radius, err = parseOptionalFloat(query.Get("radius"))
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("radius must be a valid float"))
		return
	}
	request.Limit, err = parseOptionalInt(query.Get("limit"))
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("limit must be a valid int"))
		return
	}
	if err := api.validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	results, err := api.intersectionService.NearestIntersections(request.Lat, request.Lon, request.Radius,
		request.Limit)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewNearestIntersectionsResponse(api.intersectionService,
		results)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

// nextIntersection. GET /api/intersections/next?lat=&lon=&heading=
func (api *intersectionAPI) nextIntersection(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request nextIntersectionRequest
		err     error
	)

	query := r.URL.Query()

	request.Lat, err = strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("lat is required and must be a valid float"))
		return
	}
	request.Lon, err = strconv.ParseFloat(query.Get("lon"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("lon is required and must be a valid float"))
		return
	}
	request.Heading, err = parseOptionalFloat(query.Get("heading"))
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("heading must be a valid float"))
		return
	}
	if err := api.validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	next, err := api.intersectionService.NextIntersection(request.Lat, request.Lon, request.Heading)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewNextIntersectionResponse(api.intersectionService,
		next)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
