package render

import (
	"bytes"
	"html/template"

	"trivia-quiz/internal/domain"
)

const fragmentTemplates = `
{{define "answer"}}<div class="answers"><input type="radio" id="answer-{{.Index}}" value="{{.Answer}}" name="answerChoice" required>
<label for="answer-{{.Index}}"><span><span></span></span>{{.Answer}}</label></div>{{end}}

{{define "question"}}<form class="js-question-form" action="/answer" method="post">
  <legend class="question-text">{{.Question.Text}}</legend>
  <br>
  {{range .Items}}{{.}}{{end}}
  <br>
  <br>
  <button class="inputSubmit" type="submit">Submit</button>
</form>{{end}}

{{define "feedback"}}<p>
  {{if .Correct}}<div class="correct">You got it!</div>{{else}}<div class="wrong">Too bad! The correct answer was: {{.CorrectAnswer}}</div>{{end}}
</p>
<form action="/continue" method="post"><button class="continue js-continue" type="submit">Continue</button></form>{{end}}

{{define "score"}}<span>Score: {{.}}</span>{{end}}

{{define "progress"}}<span>Question {{.Current}} of {{.Total}}</span>{{end}}

{{define "outro"}}<h2>Quiz complete</h2>
<p class="final-score">You scored {{.Score}} out of {{.Total}}.</p>
<form action="/start" method="post"><button class="js-start" type="submit">Play again</button></form>
<form action="/restart" method="post"><button class="js-restart" type="submit">Back to start</button></form>{{end}}
`

var fragments = template.Must(template.New("fragments").Parse(fragmentTemplates))

// AnswerItemHTML renders one radio choice of a question form.
func AnswerItemHTML(answer string, index int) template.HTML {
	return execute("answer", struct {
		Answer string
		Index  int
	}{answer, index})
}

// QuestionHTML renders the question form with one radio per answer, in order.
func QuestionHTML(q domain.Question) template.HTML {
	items := make([]template.HTML, 0, len(q.Answers))
	for i, answer := range q.Answers {
		items = append(items, AnswerItemHTML(answer, i))
	}
	return execute("question", struct {
		Question domain.Question
		Items    []template.HTML
	}{q, items})
}

// FeedbackHTML renders the message shown after answering plus the continue button.
func FeedbackHTML(fb domain.Feedback) template.HTML {
	return execute("feedback", fb)
}

func ScoreHTML(score int) template.HTML {
	return execute("score", score)
}

func ProgressHTML(p domain.Progress) template.HTML {
	return execute("progress", p)
}

func OutroHTML(score, total int) template.HTML {
	return execute("outro", struct {
		Score int
		Total int
	}{score, total})
}

func execute(name string, data any) template.HTML {
	var buf bytes.Buffer
	// execution only fails on template bugs
	_ = fragments.ExecuteTemplate(&buf, name, data)
	return template.HTML(buf.String())
}
