package render

import (
	"html/template"
	"io"
	"strconv"

	"trivia-quiz/internal/domain"
)

// Region is a top-level area of the quiz page that can be shown, hidden or refilled.
type Region string

const (
	RegionIntro    Region = "intro"
	RegionQuestion Region = "question"
	RegionFeedback Region = "question-feedback"
	RegionOutro    Region = "outro"
	RegionStatus   Region = "quiz-status"
	RegionProgress Region = "progress"
	RegionScore    Region = "score"
)

// Regions lists every region in document order.
var Regions = []Region{RegionStatus, RegionProgress, RegionScore, RegionIntro, RegionQuestion, RegionFeedback, RegionOutro}

// AmountChoices are the batch sizes offered on the intro screen.
var AmountChoices = []int{5, 10, 15, 20}

// Env is the data a view needs besides the session snapshot.
type Env struct {
	TokenReady    bool
	Categories    []domain.Category
	Results       []domain.Result
	DefaultAmount int
}

// RegionUpdate is what the browser applies to one region on a live re-render.
type RegionUpdate struct {
	Visible bool   `json:"visible"`
	HTML    string `json:"html,omitempty"`
}

// View is the rendered state of every region for one snapshot.
type View struct {
	Page          domain.Page
	Visible       map[Region]bool
	Fragments     map[Region]template.HTML
	StartDisabled bool
	Env           Env
}

// Build maps a snapshot to the visible regions and their fragments.
func Build(snap domain.Snapshot, env Env) View {
	view := View{
		Page:          snap.State.Page,
		Visible:       make(map[Region]bool, len(Regions)),
		Fragments:     make(map[Region]template.HTML, len(Regions)),
		StartDisabled: !env.TokenReady,
		Env:           env,
	}

	view.Fragments[RegionScore] = ScoreHTML(snap.Score)
	view.Fragments[RegionProgress] = ProgressHTML(snap.Progress)

	switch snap.State.Page {
	case domain.PageIntro:
		view.show(RegionIntro)
	case domain.PageQuestion:
		if snap.Question != nil {
			view.Fragments[RegionQuestion] = QuestionHTML(*snap.Question)
		}
		view.show(RegionQuestion, RegionStatus, RegionProgress, RegionScore)
	case domain.PageAnswer:
		if snap.State.Feedback != nil {
			view.Fragments[RegionFeedback] = FeedbackHTML(*snap.State.Feedback)
		}
		view.show(RegionFeedback, RegionStatus, RegionProgress, RegionScore)
	case domain.PageOutro:
		view.Fragments[RegionOutro] = OutroHTML(snap.Score, snap.Progress.Total)
		view.show(RegionOutro, RegionStatus, RegionScore)
	}
	return view
}

func (v View) show(regions ...Region) {
	for _, region := range regions {
		v.Visible[region] = true
	}
}

// Updates flattens the view into per-region updates for the live channel.
func (v View) Updates() map[Region]RegionUpdate {
	updates := make(map[Region]RegionUpdate, len(Regions))
	for _, region := range Regions {
		updates[region] = RegionUpdate{
			Visible: v.Visible[region],
			HTML:    string(v.Fragments[region]),
		}
	}
	return updates
}

// WritePage renders the full HTML document for a view.
func WritePage(w io.Writer, v View) error {
	return pageTemplate.Execute(w, v)
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"visible": func(v View, region string) bool { return v.Visible[Region(region)] },
	"fragment": func(v View, region string) template.HTML {
		return v.Fragments[Region(region)]
	},
	"selected": func(a, b int) bool { return a == b },
	"amounts":  func() []int { return AmountChoices },
	"itoa":     strconv.Itoa,
}).Parse(pageHTML))

const pageHTML = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Trivia Quiz</title>
  </head>
  <body>
    <main>
      <section class="js-quiz-status quiz-status" data-region="quiz-status"{{if not (visible . "quiz-status")}} hidden{{end}}>
        <div class="js-progress" data-region="progress"{{if not (visible . "progress")}} hidden{{end}}>{{fragment . "progress"}}</div>
        <div class="js-score" data-region="score"{{if not (visible . "score")}} hidden{{end}}>{{fragment . "score"}}</div>
      </section>

      <section class="js-intro" data-region="intro"{{if not (visible . "intro")}} hidden{{end}}>
        <h1>Trivia Quiz</h1>
        <form class="js-start-form" action="/start" method="post">
          <label for="js-question-quantity">Questions</label>
          <select id="js-question-quantity" name="amount">
            {{$def := .Env.DefaultAmount}}{{range amounts}}<option value="{{.}}"{{if selected . $def}} selected{{end}}>{{.}}</option>{{end}}
          </select>
          {{if .Env.Categories}}<label for="js-question-category">Category</label>
          <select id="js-question-category" name="category">
            <option value="">Any category</option>
            {{range .Env.Categories}}<option value="{{itoa .ID}}">{{.Name}}</option>{{end}}
          </select>{{end}}
          <label for="js-question-difficulty">Difficulty</label>
          <select id="js-question-difficulty" name="difficulty">
            <option value="">Any difficulty</option>
            <option value="easy">Easy</option>
            <option value="medium">Medium</option>
            <option value="hard">Hard</option>
          </select>
          <button class="js-start" type="submit"{{if .StartDisabled}} disabled{{end}}>Start quiz</button>
        </form>
        {{if .Env.Results}}<ol class="recent-results">
          {{range .Env.Results}}<li>{{.Score}} / {{.Total}}</li>{{end}}
        </ol>{{end}}
      </section>

      <section class="js-question" data-region="question"{{if not (visible . "question")}} hidden{{end}}>{{fragment . "question"}}</section>
      <section class="js-question-feedback" data-region="question-feedback"{{if not (visible . "question-feedback")}} hidden{{end}}>{{fragment . "question-feedback"}}</section>
      <section class="js-outro" data-region="outro"{{if not (visible . "outro")}} hidden{{end}}>{{fragment . "outro"}}</section>
    </main>
    <script>
      (function () {
        if (!window.WebSocket) { return; }
        var proto = location.protocol === "https:" ? "wss://" : "ws://";
        var ws = new WebSocket(proto + location.host + "/ws");
        var live = false;
        ws.onopen = function () { live = true; };
        ws.onclose = function () { live = false; };
        ws.onmessage = function (ev) {
          var msg = JSON.parse(ev.data);
          if (msg.type === "token") {
            document.querySelectorAll(".js-start").forEach(function (b) { b.disabled = !msg.payload.ready; });
            return;
          }
          if (msg.type !== "render") { console.log(msg); return; }
          Object.keys(msg.payload.regions).forEach(function (name) {
            var el = document.querySelector('[data-region="' + name + '"]');
            var update = msg.payload.regions[name];
            if (!el) { return; }
            el.hidden = !update.visible;
            if (update.html) { el.innerHTML = update.html; }
          });
        };
        function send(type, payload) {
          if (!live) { return false; }
          ws.send(JSON.stringify({type: type, payload: payload || {}}));
          return true;
        }
        document.addEventListener("submit", function (ev) {
          var form = ev.target;
          var action = form.getAttribute("action");
          var data = new FormData(form);
          var sent = false;
          if (action === "/start") {
            var amount = document.getElementById("js-question-quantity");
            var category = document.getElementById("js-question-category");
            var difficulty = document.getElementById("js-question-difficulty");
            sent = send("start", {
              amount: amount ? amount.value : "",
              category: category ? category.value : "",
              difficulty: difficulty ? difficulty.value : ""
            });
          } else if (action === "/answer") {
            sent = send("submit", {answer: data.get("answerChoice") || ""});
          } else if (action === "/continue") {
            sent = send("continue");
          } else if (action === "/restart") {
            sent = send("restart");
          }
          if (sent) { ev.preventDefault(); }
        });
      })();
    </script>
  </body>
</html>`
