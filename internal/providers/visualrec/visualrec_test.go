package visualrec_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/lyceum/internal/classifiers"
	"github.com/JaimeStill/lyceum/internal/credentials"
	"github.com/JaimeStill/lyceum/internal/projects"
	"github.com/JaimeStill/lyceum/internal/providers/visualrec"
	"github.com/JaimeStill/lyceum/internal/training"
	"github.com/JaimeStill/lyceum/internal/trainingdata"
	"github.com/JaimeStill/lyceum/pkg/remote"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var jpeg = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

type mockExamples struct {
	examples []trainingdata.Example
}

func (m *mockExamples) Handler() *trainingdata.Handler { return nil }

func (m *mockExamples) Add(context.Context, *projects.Project, trainingdata.AddCommand) (*trainingdata.Example, error) {
	return nil, errors.New("not supported")
}

func (m *mockExamples) Examples(context.Context, *projects.Project) ([]trainingdata.Example, error) {
	return m.examples, nil
}

func newStrategy(examples ...trainingdata.Example) *visualrec.Strategy {
	return visualrec.New(&mockExamples{examples: examples}, visualrec.Options{
		Version:     "2018-03-19",
		Timeout:     time.Second,
		ModelTTL:    24 * time.Hour,
		Concurrency: 2,
	}, discard)
}

func creds(url string) *credentials.Credentials {
	return &credentials.Credentials{ID: uuid.New(), URL: url, Username: "apikey", Password: "secret"}
}

func project() *projects.Project {
	return &projects.Project{ID: uuid.New(), ClassID: "class-1", UserID: "student-1", Type: projects.Images, Name: "pets"}
}

func TestTrain(t *testing.T) {
	labels := map[string][]string{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v3/classifiers" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.FormValue("name") != "pets" {
			t.Errorf("name = %q", r.FormValue("name"))
		}
		for field, headers := range r.MultipartForm.File {
			f, _ := headers[0].Open()
			data, _ := io.ReadAll(f)
			f.Close()

			zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
			if err != nil {
				t.Errorf("%s is not a zip: %v", field, err)
				continue
			}
			for _, zf := range zr.File {
				labels[field] = append(labels[field], zf.Name)
			}
		}
		io.WriteString(w, `{"classifier_id":"pets_1234","name":"pets","status":"training","created":"2017-05-04T12:01:00.000Z"}`)
	}))
	defer srv.Close()

	s := newStrategy(
		trainingdata.Example{ID: "a", Label: "cats", Image: jpeg, ContentType: "image/jpeg"},
		trainingdata.Example{ID: "b", Label: "cats", Image: jpeg, ContentType: "image/png"},
		trainingdata.Example{ID: "c", Label: "big dogs", Image: jpeg, ContentType: "image/jpeg"},
	)

	rec, err := s.Train(context.Background(), project(), creds(srv.URL))
	if err != nil {
		t.Fatalf("train: %v", err)
	}

	created := time.Date(2017, 5, 4, 12, 1, 0, 0, time.UTC)
	if rec.ClassifierID != "pets_1234" || rec.Status != classifiers.Training {
		t.Errorf("record = %+v", rec)
	}
	if !rec.Created.Equal(created) || !rec.Updated.Equal(created) {
		t.Errorf("created = %v, updated = %v", rec.Created, rec.Updated)
	}
	if rec.Expiry == nil || !rec.Expiry.Equal(created.Add(24*time.Hour)) {
		t.Errorf("expiry = %v", rec.Expiry)
	}

	cats := labels["cats_positive_examples"]
	sort.Strings(cats)
	if len(cats) != 2 || cats[0] != "a.jpg" || cats[1] != "b.png" {
		t.Errorf("cats archive = %v", cats)
	}
	if len(labels["big_dogs_positive_examples"]) != 1 {
		t.Errorf("archives = %v", labels)
	}
}

func TestTrainInsufficient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"code":400,"error":"Not enough images to train the classifier"}`)
	}))
	defer srv.Close()

	_, err := newStrategy().Train(context.Background(), project(), creds(srv.URL))

	var re *remote.Error
	if !errors.As(err, &re) || re.Message != "Not enough images to train the classifier" {
		t.Fatalf("err = %v", err)
	}
}

func TestTest(t *testing.T) {
	var sawURL, sawFile atomic.Bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/classify" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		r.ParseMultipartForm(1 << 20)
		if r.FormValue("classifier_ids") != "pets_1234" || r.FormValue("threshold") != "0" {
			t.Errorf("form = %v", r.MultipartForm.Value)
		}
		if r.FormValue("url") != "" {
			sawURL.Store(true)
		}
		if _, _, err := r.FormFile("images_file"); err == nil {
			sawFile.Store(true)
		}
		io.WriteString(w, `{"images":[{"classifiers":[{"classifier_id":"pets_1234","classes":[
			{"class":"dogs","score":0.2},
			{"class":"cats","score":0.7},
			{"class":"fish","score":0.1}
		]}]}]}`)
	}))
	defer srv.Close()

	s := newStrategy()
	c := creds(srv.URL)

	before := time.Now().UTC()
	results, err := s.Test(context.Background(), project(), c, "pets_1234", training.Payload{ImageURL: "https://example.com/cat.jpg"})
	if err != nil {
		t.Fatalf("test: %v", err)
	}

	want := []string{"cats", "dogs", "fish"}
	if len(results) != len(want) {
		t.Fatalf("results = %+v", results)
	}
	for i, w := range want {
		if results[i].ClassName != w {
			t.Errorf("results[%d] = %s, want %s", i, results[i].ClassName, w)
		}
		if results[i].ClassifierTimestamp.Before(before) {
			t.Errorf("results[%d] timestamp should be fresh", i)
		}
	}

	if _, err := s.Test(context.Background(), project(), c, "pets_1234", training.Payload{ImageData: jpeg}); err != nil {
		t.Fatalf("test upload: %v", err)
	}

	if !sawURL.Load() || !sawFile.Load() {
		t.Errorf("url = %v, file = %v", sawURL.Load(), sawFile.Load())
	}
}

func TestTestImageError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"images":[{"error":{"code":400,"description":"Unable to download image"}}]}`)
	}))
	defer srv.Close()

	_, err := newStrategy().Test(context.Background(), project(), creds(srv.URL), "x", training.Payload{ImageURL: "https://nowhere/img.jpg"})

	var re *remote.Error
	if !errors.As(err, &re) || re.StatusCode != http.StatusBadRequest || !strings.Contains(re.Message, "Unable to download") {
		t.Errorf("err = %v", err)
	}
}

func TestQueryStatusesAndDelete(t *testing.T) {
	remoteStatus := map[string]string{"ready": "ready", "again": "retraining", "bad": "failed"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/v3/classifiers/")
		status, ok := remoteStatus[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"code":404,"error":"Cannot delete classifier"}`)
			return
		}
		if r.Method == http.MethodDelete {
			delete(remoteStatus, id)
			io.WriteString(w, `{}`)
			return
		}
		io.WriteString(w, `{"classifier_id":"`+id+`","status":"`+status+`"}`)
	}))
	defer srv.Close()

	c := creds(srv.URL)
	created := time.Date(2017, 5, 4, 12, 1, 0, 0, time.UTC)
	rec := func(id string) classifiers.Record {
		return classifiers.Record{ClassifierID: id, ProjectType: projects.Images, CredentialsID: c.ID, Status: classifiers.Training, Created: created, Updated: created}
	}

	s := newStrategy()
	got := s.QueryStatuses(context.Background(), "class-1", []classifiers.Record{rec("ready"), rec("again"), rec("bad"), rec("gone")}, training.Keyring{c.ID: c})

	want := []struct {
		status  classifiers.Status
		stamped bool
	}{
		{classifiers.Available, true},
		{classifiers.Training, false},
		{classifiers.Failed, true},
		{classifiers.Unknown, false},
	}
	for i, w := range want {
		if got[i].Status != w.status {
			t.Errorf("%s = %s, want %s", got[i].ClassifierID, got[i].Status, w.status)
		}
		if stamped := got[i].Updated.After(created); stamped != w.stamped {
			t.Errorf("%s updated = %v, stamped %v, want %v", got[i].ClassifierID, got[i].Updated, stamped, w.stamped)
		}
	}

	if err := s.Delete(context.Background(), project(), c, "ready"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var re *remote.Error
	if err := s.Delete(context.Background(), project(), c, "ready"); !errors.As(err, &re) || re.StatusCode != http.StatusNotFound {
		t.Errorf("second delete err = %v", err)
	}
}
