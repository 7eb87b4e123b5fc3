package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"bookvideolink/internal/config"
	"bookvideolink/internal/mocks"
	"bookvideolink/internal/models"
	"bookvideolink/internal/repository"
	"bookvideolink/internal/service"
	"bookvideolink/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	srv       *Server
	api       *mocks.BookAVideoLinkAPI
	search    *mocks.PrisonerSearchAPI
	users     *mocks.ManageUsersAPI
	locations *mocks.LocationsAPI
	sid       string
	cookie    string
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "book-a-video-link", Timezone: "UTC"},
		Session: config.SessionConfig{
			Secret:     testSecret,
			CookieName: "bvl.session",
			Expiry:     time.Hour,
		},
		Auth: config.AuthConfig{
			HeaderSecret:   "x-proxy-secret",
			HeaderUsername: "x-auth-username",
			HeaderUserType: "x-auth-user-type",
			HeaderToken:    "x-auth-token",
			HeaderRoles:    "x-auth-roles",
			AdminRole:      "ADMIN",
			DevUser:        config.DevUser{Username: "court.user", DisplayName: "Court User", UserType: "COURT"},
		},
		Features: config.Features{AlteredCourtJourneyEnabled: true},
	}
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}

	f := &fixture{
		api:       new(mocks.BookAVideoLinkAPI),
		search:    new(mocks.PrisonerSearchAPI),
		users:     new(mocks.ManageUsersAPI),
		locations: new(mocks.LocationsAPI),
		sid:       uuid.NewString(),
	}
	logger := zerolog.Nop()
	journeys := service.NewJourneyService(repository.NewMemorySessionRepository(time.Hour), &logger)
	composer := service.NewComposer(f.api, cfg.Features)
	bookings := service.NewBookingService(f.api, f.search, composer, nil, time.UTC, &logger)

	srv, err := NewServer(cfg, Deps{
		Journeys:  journeys,
		Bookings:  bookings,
		Composer:  composer,
		API:       f.api,
		Search:    f.search,
		Users:     f.users,
		Locations: f.locations,
	}, &logger)
	require.NoError(t, err)
	srv.now = func() time.Time { return time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC) }
	f.srv = srv

	f.cookie, err = signSessionID(testSecret, f.sid, time.Hour)
	require.NoError(t, err)
	return f
}

func (f *fixture) do(method, path string, form url.Values, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	req.AddCookie(&http.Cookie{Name: "bvl.session", Value: f.cookie})
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	return w
}

func (f *fixture) seed(t *testing.T, jid string, d *models.BookingDraft) {
	t.Helper()
	slice, err := models.SliceOf(d)
	require.NoError(t, err)
	require.NoError(t, f.srv.deps.Journeys.Merge(context.Background(), f.sid, jid, d.BookingType.JourneySlice(), slice))
}

func (f *fixture) draft(t *testing.T, jid string, bt models.BookingType) *models.BookingDraft {
	t.Helper()
	d, err := f.srv.deps.Journeys.Draft(context.Background(), f.sid, jid, bt)
	require.NoError(t, err)
	return d
}

var prisoner = models.Prisoner{PrisonerNumber: "A1234AA", FirstName: "Joe", LastName: "Bloggs", DateOfBirth: "1990-05-01", PrisonCode: "MDI"}

func courtDraft() *models.BookingDraft {
	return &models.BookingDraft{
		BookingType:     models.BookingTypeCourt,
		Prisoner:        prisoner,
		AgencyCode:      "DRBYMC",
		HearingTypeCode: "APPEAL",
		Date:            "2030-01-02",
		StartTime:       mocks.Clock("11:00"),
		EndTime:         mocks.Clock("12:00"),
		LocationCode:    "MDI-ROOM-2",
	}
}

var uuidPattern = `[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`

func TestInsertJourneyID(t *testing.T) {
	cases := []struct {
		path    string
		pattern string
	}{
		{"/court/prisoner-search/search", `^/court/prisoner-search/` + uuidPattern + `/search$`},
		{"/probation/booking/create/A1234AA/video-link-booking", `^/probation/booking/create/` + uuidPattern + `/A1234AA/video-link-booking$`},
		{"/court/booking/request/prisoner-details", `^/court/booking/request/` + uuidPattern + `/prisoner-details$`},
		{"/court/booking/amend/12/video-link-booking", `^/court/booking/amend/12/` + uuidPattern + `/video-link-booking$`},
		{"/court/booking/cancel/12/video-link-booking", `^/court/booking/cancel/12/` + uuidPattern + `/video-link-booking$`},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			got, ok := insertJourneyID(tc.path)
			require.True(t, ok)
			assert.Regexp(t, regexp.MustCompile(tc.pattern), got)
		})
	}

	t.Run("NotAWizard", func(t *testing.T) {
		for _, p := range []string{"/", "/admin", "/court/view-booking", "/other/prisoner-search/search"} {
			_, ok := insertJourneyID(p)
			assert.False(t, ok, p)
		}
	})

	t.Run("AlreadyHasJourney", func(t *testing.T) {
		_, ok := insertJourneyID("/court/prisoner-search/" + uuid.NewString() + "/nothing-here")
		assert.False(t, ok)
	})
}

func TestNoRoute(t *testing.T) {
	f := newFixture(t, nil)

	t.Run("RedirectsWithFreshJourney", func(t *testing.T) {
		w := f.do(http.MethodGet, "/court/prisoner-search/search?lastName=smith", nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Regexp(t, `^/court/prisoner-search/`+uuidPattern+`/search\?lastName=smith$`, w.Header().Get("Location"))
	})

	t.Run("UnknownPage", func(t *testing.T) {
		w := f.do(http.MethodGet, "/nothing/here", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Page not found")
	})

	t.Run("InvalidJourneySegment", func(t *testing.T) {
		w := f.do(http.MethodGet, "/court/prisoner-search/not-a-uuid/search", nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Regexp(t, `^/court/prisoner-search/`+uuidPattern+`/not-a-uuid/search$`, w.Header().Get("Location"))
	})
}

func TestSessionCookie(t *testing.T) {
	id := uuid.NewString()
	signed, err := signSessionID(testSecret, id, time.Hour)
	require.NoError(t, err)

	got, ok := verifySessionCookie(testSecret, signed)
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = verifySessionCookie("other-secret", signed)
	assert.False(t, ok)

	expired, err := signSessionID(testSecret, id, -time.Minute)
	require.NoError(t, err)
	_, ok = verifySessionCookie(testSecret, expired)
	assert.False(t, ok)

	notUUID, err := signSessionID(testSecret, "not-a-uuid", time.Hour)
	require.NoError(t, err)
	_, ok = verifySessionCookie(testSecret, notUUID)
	assert.False(t, ok)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		ID:        id,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, ok = verifySessionCookie(testSecret, unsigned)
	assert.False(t, ok)

	_, ok = verifySessionCookie(testSecret, "garbage")
	assert.False(t, ok)
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.RateLimit = config.RateLimitConfig{RPS: 1, Burst: 1}
	})

	t.Run("CookielessClientsShareBucket", func(t *testing.T) {
		limited := 0
		for i := 0; i < 50; i++ {
			req := httptest.NewRequest(http.MethodGet, "/nothing/here", nil)
			w := httptest.NewRecorder()
			f.srv.Handler().ServeHTTP(w, req)
			if w.Code == http.StatusTooManyRequests {
				limited++
			}
		}
		assert.GreaterOrEqual(t, limited, 45)
		assert.Equal(t, 1, f.srv.limiter.size())
	})

	t.Run("SessionHasOwnBucket", func(t *testing.T) {
		w := f.do(http.MethodGet, "/nothing/here", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, 2, f.srv.limiter.size())
	})
}

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	l := newRateLimiter(config.RateLimitConfig{RPS: 1, Burst: 1})
	clock := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	a := l.getLimiter("a")
	l.getLimiter("b")
	assert.Same(t, a, l.getLimiter("a"))
	assert.Equal(t, 2, l.size())

	clock = clock.Add(5 * time.Minute)
	l.getLimiter("a")
	assert.Equal(t, 2, l.size())

	clock = clock.Add(limiterIdleTTL - time.Minute)
	l.getLimiter("c")
	assert.Equal(t, 2, l.size())
	_, ok := l.limiters.Load("b")
	assert.False(t, ok)
	_, ok = l.limiters.Load("a")
	assert.True(t, ok)
}

func TestNewBooking_EmptyFormErrorsShownOnce(t *testing.T) {
	f := newFixture(t, nil)
	jid := uuid.NewString()
	path := "/court/booking/create/" + jid + "/A1234AA/video-link-booking"

	p := prisoner
	f.search.On("GetPrisoner", mock.Anything, mock.Anything, "A1234AA").Return(&p, nil).Once()
	f.api.On("GetUserCourtPreferences", mock.Anything, mock.Anything).Return([]models.Court{{Code: "DRBYMC", Description: "Derby Justice Centre"}}, nil)
	f.api.On("GetReferenceCodes", mock.Anything, mock.Anything, models.GroupCourtHearingType).Return([]models.ReferenceCode{{Code: "APPEAL", Description: "Appeal"}}, nil)

	w := f.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Joe Bloggs")
	assert.NotContains(t, w.Body.String(), "Select a court")

	w = f.do(http.MethodPost, path, url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, path, w.Header().Get("Location"))

	d := f.draft(t, jid, models.BookingTypeCourt)
	require.NotNil(t, d)
	assert.Equal(t, "A1234AA", d.Prisoner.PrisonerNumber)
	assert.Empty(t, d.AgencyCode)
	assert.Nil(t, d.StartTime)

	w = f.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	for _, msg := range []string{"Select a court", "Select a hearing type", "Enter a date", "Enter a start time", "Enter an end time"} {
		assert.Contains(t, body, msg)
	}

	w = f.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Select a court")
	f.search.AssertExpectations(t)
}

func TestNewBooking_ValidFormGoesToRooms(t *testing.T) {
	f := newFixture(t, nil)
	jid := uuid.NewString()
	base := "/court/booking/create/" + jid + "/A1234AA/video-link-booking"
	f.seed(t, jid, &models.BookingDraft{BookingType: models.BookingTypeCourt, Prisoner: prisoner})

	w := f.do(http.MethodPost, base, url.Values{
		"agencyCode":      {"DRBYMC"},
		"hearingTypeCode": {"APPEAL"},
		"date":            {"02/01/2030"},
		"startTime":       {"11:00"},
		"endTime":         {"12:00"},
		"cvpRequired":     {"no"},
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, base+"/select-rooms", w.Header().Get("Location"))

	d := f.draft(t, jid, models.BookingTypeCourt)
	require.NotNil(t, d)
	assert.Equal(t, "2030-01-02", d.Date)
	assert.Equal(t, "DRBYMC", d.AgencyCode)
	require.NotNil(t, d.StartTime)
	assert.Equal(t, "11:00", models.FormatClock(*d.StartTime))
	assert.False(t, d.CvpRequired)
}

func TestSelectRooms_NoCandidates(t *testing.T) {
	f := newFixture(t, nil)
	jid := uuid.NewString()
	base := "/court/booking/create/" + jid + "/A1234AA/video-link-booking"
	f.seed(t, jid, courtDraft())

	f.api.On("AvailableLocationsByDateAndTime", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.AvailableLocationsResponse{}, nil)

	w := f.do(http.MethodGet, base+"/select-rooms", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, base+"/not-available", w.Header().Get("Location"))
}

func TestSelectRooms_DerivesPrePost(t *testing.T) {
	f := newFixture(t, nil)
	jid := uuid.NewString()
	base := "/court/booking/create/" + jid + "/A1234AA/video-link-booking"
	f.seed(t, jid, courtDraft())

	f.api.On("AvailableLocationsByDateAndTime", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.AvailableLocationsResponse{Locations: []models.AvailableLocation{
			{Name: "Room 1", DpsLocationKey: "MDI-ROOM-1"},
			{Name: "Room 2", DpsLocationKey: "MDI-ROOM-2"},
		}}, nil)

	w := f.do(http.MethodPost, base+"/select-rooms", url.Values{
		"preRequired":     {"yes"},
		"preLocationCode": {"MDI-ROOM-1"},
		"locationCode":    {"MDI-ROOM-2"},
		"postRequired":    {"no"},
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, base+"/check-booking", w.Header().Get("Location"))

	d := f.draft(t, jid, models.BookingTypeCourt)
	pre, ok := d.PreInterval()
	require.True(t, ok)
	assert.Equal(t, "10:45", pre.StartClock())
	assert.Equal(t, "11:00", pre.EndClock())
	assert.Equal(t, "MDI-ROOM-1", d.PreLocationCode)
	_, ok = d.PostInterval()
	assert.False(t, ok)

	t.Run("RoomNotOffered", func(t *testing.T) {
		w := f.do(http.MethodPost, base+"/select-rooms", url.Values{
			"preRequired":  {"no"},
			"locationCode": {"MDI-ROOM-9"},
			"postRequired": {"no"},
		})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, base+"/select-rooms", w.Header().Get("Location"))
		assert.Equal(t, "MDI-ROOM-2", f.draft(t, jid, models.BookingTypeCourt).LocationCode)
	})
}

func TestCheckBooking_NotAvailable(t *testing.T) {
	f := newFixture(t, nil)
	jid := uuid.NewString()
	base := "/court/booking/create/" + jid + "/A1234AA/video-link-booking"
	f.seed(t, jid, courtDraft())

	f.api.On("CheckAvailability", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.AvailabilityResponse{AvailabilityOk: false}, nil)

	for i := 0; i < 2; i++ {
		w := f.do(http.MethodPost, base+"/check-booking", url.Values{})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, base+"/not-available", w.Header().Get("Location"))
	}

	f.api.AssertNumberOfCalls(t, "CheckAvailability", 2)
	f.api.AssertNotCalled(t, "CreateVideoLinkBooking", mock.Anything, mock.Anything, mock.Anything)
	assert.NotNil(t, f.draft(t, jid, models.BookingTypeCourt))
}

func TestCheckBooking_AmendNotAvailable(t *testing.T) {
	f := newFixture(t, nil)
	jid := uuid.NewString()
	base := "/court/booking/amend/12/" + jid + "/video-link-booking"
	d := courtDraft()
	d.BookingID = 12
	f.seed(t, jid, d)

	f.api.On("CheckAvailability", mock.Anything, mock.Anything, mock.MatchedBy(func(req models.AvailabilityRequest) bool {
		return req.VlbIDToExclude != nil && *req.VlbIDToExclude == 12
	})).Return(&models.AvailabilityResponse{AvailabilityOk: false}, nil).Once()

	w := f.do(http.MethodPost, base+"/check-booking", url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, base+"/not-available", w.Header().Get("Location"))

	f.api.AssertExpectations(t)
	f.api.AssertNotCalled(t, "AmendVideoLinkBooking", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.NotNil(t, f.draft(t, jid, models.BookingTypeCourt))

	claimed, err := f.srv.deps.Journeys.ClaimSubmission(context.Background(), jid)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestCheckBooking_CreateOnce(t *testing.T) {
	f := newFixture(t, nil)
	jid := uuid.NewString()
	base := "/court/booking/create/" + jid + "/A1234AA/video-link-booking"
	f.seed(t, jid, courtDraft())

	f.api.On("CheckAvailability", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.AvailabilityResponse{AvailabilityOk: true}, nil)
	f.api.On("CreateVideoLinkBooking", mock.Anything, mock.Anything, mock.MatchedBy(func(req models.CreateVideoBookingRequest) bool {
		return req.CourtCode == "DRBYMC" && req.Comments == "interpreter needed" && len(req.Prisoners) == 1
	})).Return(int64(42), nil).Once()

	w := f.do(http.MethodPost, base+"/check-booking", url.Values{"notes": {"interpreter needed"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, base+"/confirmation/42", w.Header().Get("Location"))
	assert.Nil(t, f.draft(t, jid, models.BookingTypeCourt))

	w = f.do(http.MethodGet, base+"/confirmation/42", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "The video link has been booked")
	assert.Contains(t, w.Body.String(), "/court/view-booking/42")

	w = f.do(http.MethodPost, base+"/check-booking", url.Values{})
	assert.Equal(t, http.StatusConflict, w.Code)
	f.api.AssertNumberOfCalls(t, "CreateVideoLinkBooking", 1)
}

func TestCheckBooking_RequestModeSkipsAvailability(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.Auth.DevUser.UserType = "PROBATION"
	})
	jid := uuid.NewString()
	base := "/probation/booking/request/" + jid + "/video-link-booking"
	f.seed(t, jid, &models.BookingDraft{
		BookingType:     models.BookingTypeProbation,
		Prisoner:        models.Prisoner{FirstName: "Ann", LastName: "Other", DateOfBirth: "1980-02-03", PrisonCode: "MDI"},
		AgencyCode:      "BLKPPP",
		HearingTypeCode: "PSR",
		Date:            "2030-01-02",
		StartTime:       mocks.Clock("09:00"),
		EndTime:         mocks.Clock("10:00"),
	})

	f.api.On("RequestVideoLinkBooking", mock.Anything, mock.Anything, mock.MatchedBy(func(req models.RequestVideoBookingRequest) bool {
		p := req.Prisoners[0]
		return req.ProbationTeamCode == "BLKPPP" && p.FirstName == "Ann" && len(p.Appointments) == 1 && p.Appointments[0].LocationKey == ""
	})).Return(nil).Once()

	w := f.do(http.MethodPost, base+"/check-booking", url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, base+"/confirmation", w.Header().Get("Location"))

	f.api.AssertNotCalled(t, "CheckAvailability", mock.Anything, mock.Anything, mock.Anything)
	assert.Nil(t, f.draft(t, jid, models.BookingTypeProbation))

	w = f.do(http.MethodGet, base+"/confirmation", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Your request has been sent")
}

func TestAmend_NotAmendableRedirects(t *testing.T) {
	f := newFixture(t, nil)
	jid := uuid.NewString()

	booking := &models.VideoLinkBooking{
		VideoLinkBookingID: 12,
		StatusCode:         models.StatusCancelled,
		BookingType:        models.BookingTypeCourt,
		PrisonAppointments: []models.PrisonAppointment{
			{PrisonCode: "MDI", PrisonerNumber: "A1234AA", AppointmentType: models.AppointmentCourtMain, PrisonLocKey: "MDI-ROOM-2", AppointmentDate: "2099-01-02", StartTime: "11:00", EndTime: "12:00"},
		},
	}
	f.api.On("GetVideoLinkBooking", mock.Anything, mock.Anything, int64(12)).Return(booking, nil)

	w := f.do(http.MethodGet, "/court/booking/amend/12/"+jid+"/video-link-booking", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/court/view-booking/12", w.Header().Get("Location"))

	w = f.do(http.MethodGet, "/court/booking/cancel/12/"+jid+"/video-link-booking", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/court/view-booking/12", w.Header().Get("Location"))
	assert.Nil(t, f.draft(t, jid, models.BookingTypeCourt))
}

func TestSelectRooms_GrandfatheredRoom(t *testing.T) {
	f := newFixture(t, nil)
	jid := uuid.NewString()
	base := "/court/booking/amend/12/" + jid + "/video-link-booking"

	d := courtDraft()
	d.BookingID = 12
	d.Date = "2099-01-02"
	d.LocationCode = "MDI-OLD"
	d.OriginalAppointments = []models.OriginalAppointment{
		{Type: models.AppointmentCourtMain, LocationCode: "MDI-OLD", Date: "2099-01-02", StartTime: "11:00", EndTime: "12:00", VideoEnabled: false},
	}
	f.seed(t, jid, d)

	f.api.On("AvailableLocationsByDateAndTime", mock.Anything, mock.Anything, mock.MatchedBy(func(req models.AvailableLocationsRequest) bool {
		return req.VlbIDToExclude != nil && *req.VlbIDToExclude == 12
	})).Return(&models.AvailableLocationsResponse{Locations: []models.AvailableLocation{{Name: "Room 1", DpsLocationKey: "MDI-ROOM-1"}}}, nil)
	f.locations.On("GetLocationByKey", mock.Anything, mock.Anything, "MDI-OLD").
		Return(&models.LocationsLocation{Key: "MDI-OLD", LocalName: "Old room"}, nil)

	form := url.Values{"preRequired": {"no"}, "locationCode": {"MDI-OLD"}, "postRequired": {"no"}}

	t.Run("KeptWhenUnchanged", func(t *testing.T) {
		w := f.do(http.MethodGet, base+"/select-rooms", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Old room")

		w = f.do(http.MethodPost, base+"/select-rooms", form)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, base+"/check-booking", w.Header().Get("Location"))
	})

	t.Run("RejectedWhenTimeChanges", func(t *testing.T) {
		require.NoError(t, f.srv.deps.Journeys.Merge(context.Background(), f.sid, jid, models.SliceBookACourtHearing, models.Slice{
			models.FieldStartTime: *mocks.Clock("13:00"),
			models.FieldEndTime:   *mocks.Clock("14:00"),
		}))

		w := f.do(http.MethodPost, base+"/select-rooms", form)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, base+"/select-rooms", w.Header().Get("Location"))

		var errs validation.Errors
		found, err := f.srv.deps.Journeys.TakeFlash(context.Background(), f.sid, flashValidationErrors, &errs)
		require.NoError(t, err)
		require.True(t, found)
		require.Len(t, errs, 1)
		assert.Equal(t, models.FieldLocationCode, errs[0].FieldID)
	})
}

func TestNewBooking_LegacyGrandfatheredRoom(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.Features.AlteredCourtJourneyEnabled = false
	})
	jid := uuid.NewString()
	base := "/court/booking/amend/12/" + jid + "/video-link-booking"

	d := courtDraft()
	d.BookingID = 12
	d.Date = "2099-01-02"
	d.LocationCode = "MDI-OLD"
	d.OriginalAppointments = []models.OriginalAppointment{
		{Type: models.AppointmentCourtMain, LocationCode: "MDI-OLD", Date: "2099-01-02", StartTime: "11:00", EndTime: "12:00", VideoEnabled: false},
	}
	f.seed(t, jid, d)

	f.api.On("GetPrisonLocations", mock.Anything, mock.Anything, "MDI", true).
		Return([]models.Location{{Key: "MDI-ROOM-1", Description: "Room 1", Enabled: true}}, nil)

	form := func(date string) url.Values {
		return url.Values{
			"agencyCode":      {"DRBYMC"},
			"hearingTypeCode": {"APPEAL"},
			"date":            {date},
			"startTime":       {"11:00"},
			"endTime":         {"12:00"},
			"cvpRequired":     {"no"},
			"preRequired":     {"no"},
			"postRequired":    {"no"},
			"locationCode":    {"MDI-OLD"},
		}
	}

	t.Run("RejectedWhenDateChanges", func(t *testing.T) {
		w := f.do(http.MethodPost, base, form("09/01/2099"))
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, base, w.Header().Get("Location"))

		var errs validation.Errors
		found, err := f.srv.deps.Journeys.TakeFlash(context.Background(), f.sid, flashValidationErrors, &errs)
		require.NoError(t, err)
		require.True(t, found)
		assert.True(t, errs.Has(models.FieldLocationCode), "errors: %v", errs)
		assert.Equal(t, "2099-01-02", f.draft(t, jid, models.BookingTypeCourt).Date)
	})

	t.Run("KeptWhenUnchanged", func(t *testing.T) {
		w := f.do(http.MethodPost, base, form("02/01/2099"))
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, base+"/check-booking", w.Header().Get("Location"))
	})
}

func TestHome(t *testing.T) {
	t.Run("Maintenance", func(t *testing.T) {
		f := newFixture(t, func(cfg *config.Config) {
			cfg.Maintenance = config.MaintenanceConfig{Enabled: true, EndDate: "Monday 3 June"}
		})
		w := f.do(http.MethodGet, "/", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "Monday 3 June")
		f.users.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	})

	t.Run("DisplayName", func(t *testing.T) {
		f := newFixture(t, nil)
		f.users.On("GetUser", mock.Anything, mock.Anything).Return(&models.UserDetails{Username: "court.user", Name: "Jane Court"}, nil)
		w := f.do(http.MethodGet, "/", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Jane Court")
		assert.Contains(t, w.Body.String(), "/court/view-booking")
	})
}

func TestAuth(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.Auth.Enabled = true
		cfg.Auth.SharedSecret = "proxy"
	})

	t.Run("MissingSecret", func(t *testing.T) {
		w := f.do(http.MethodGet, "/court/view-booking", nil, "x-auth-username", "someone")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("WrongAgencyType", func(t *testing.T) {
		w := f.do(http.MethodGet, "/court/view-booking", nil,
			"x-proxy-secret", "proxy", "x-auth-username", "someone", "x-auth-user-type", "probation")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("AdminOnly", func(t *testing.T) {
		w := f.do(http.MethodGet, "/admin", nil,
			"x-proxy-secret", "proxy", "x-auth-username", "someone", "x-auth-user-type", "COURT", "x-auth-roles", "OTHER")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Admin", func(t *testing.T) {
		f.api.On("GetPrisons", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.IsAdmin && u.Token == "abc"
		}), false).Return([]models.Prison{{Code: "MDI", Name: "Moorland"}}, nil).Once()
		w := f.do(http.MethodGet, "/admin", nil,
			"x-proxy-secret", "proxy", "x-auth-username", "someone", "x-auth-user-type", "PRISON",
			"x-auth-roles", "OTHER, ADMIN", "x-auth-token", "Bearer abc")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Moorland")
	})
}

func TestDownloadCSV(t *testing.T) {
	f := newFixture(t, nil)
	f.api.On("GetUserCourtPreferences", mock.Anything, mock.Anything).
		Return([]models.Court{{Code: "ABC", Description: "A court"}, {Code: "DEF", Description: "D court"}}, nil)
	f.api.On("DownloadBookingsCSV", mock.Anything, mock.Anything, models.BookingTypeCourt, "DEF", "2030-01-02", csvDownloadDays, mock.Anything).
		Return("date,prisoner\n2030-01-02,A1234AA\n", nil)

	w := f.do(http.MethodGet, "/court/view-booking/download-csv?date=02/01/2030&agencyCode=DEF", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "date,prisoner\n2030-01-02,A1234AA\n", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))

	t.Run("UpstreamError", func(t *testing.T) {
		f := newFixture(t, nil)
		f.api.On("GetUserCourtPreferences", mock.Anything, mock.Anything).
			Return([]models.Court{{Code: "ABC", Description: "A court"}}, nil)
		f.api.On("DownloadBookingsCSV", mock.Anything, mock.Anything, models.BookingTypeCourt, "ABC", "2030-01-02", csvDownloadDays, mock.Anything).
			Return(nil, errors.New("bvls unavailable"))

		w := f.do(http.MethodGet, "/court/view-booking/download-csv?date=02/01/2030&agencyCode=ABC", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Empty(t, w.Header().Get("Content-Disposition"))
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "Sorry, there is a problem with the service")
	})
}

func TestViewBookings_DefaultsToToday(t *testing.T) {
	f := newFixture(t, nil)
	f.api.On("GetUserCourtPreferences", mock.Anything, mock.Anything).
		Return([]models.Court{{Code: "ABC", Description: "A court"}, {Code: "DEF", Description: "D court"}}, nil)
	f.api.On("GetSchedule", mock.Anything, mock.Anything, models.BookingTypeCourt, "ABC", "2030-01-01").
		Return([]models.ScheduleItem{{VideoBookingID: 5, BookingType: models.BookingTypeCourt, PrisonerNumber: "A1234AA", AppointmentDate: "2030-01-01", StartTime: "10:00", EndTime: "11:00"}}, nil)

	w := f.do(http.MethodGet, "/court/view-booking", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/court/view-booking/5")
	f.api.AssertNotCalled(t, "GetSchedule", mock.Anything, mock.Anything, models.BookingTypeCourt, "DEF", mock.Anything)
}

func TestAdminSchedule(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.Auth.DevUser.IsAdmin = true
	})

	t.Run("AllDayForcesTimes", func(t *testing.T) {
		f.api.On("AddRoomSchedule", mock.Anything, mock.Anything, "loc-1", models.RoomScheduleRequest{
			StartDayOfWeek: "MONDAY",
			EndDayOfWeek:   "FRIDAY",
			StartTime:      "07:00",
			EndTime:        "17:00",
			LocationUsage:  models.UsageShared,
		}).Return(nil).Once()

		w := f.do(http.MethodPost, "/admin/add-schedule/MDI/loc-1", url.Values{
			"scheduleStartDay":   {"1"},
			"scheduleEndDay":     {"5"},
			"allDay":             {"true"},
			"schedulePermission": {models.UsageShared},
		})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/admin/view-prison-room/MDI/loc-1", w.Header().Get("Location"))
		f.api.AssertExpectations(t)
	})

	t.Run("EndDayBeforeStartDay", func(t *testing.T) {
		w := f.do(http.MethodPost, "/admin/add-schedule/MDI/loc-1", url.Values{
			"scheduleStartDay":   {"5"},
			"scheduleEndDay":     {"1"},
			"allDay":             {"true"},
			"schedulePermission": {models.UsageShared},
		})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/admin/add-schedule/MDI/loc-1", w.Header().Get("Location"))
		f.api.AssertNumberOfCalls(t, "AddRoomSchedule", 1)
	})
}
