package render

import "github.com/flosch/pongo2/v6"

var resultTemplate = pongo2.Must(pongo2.FromString(`<!DOCTYPE html>
<html lang="en" data-theme="{{ theme }}">
<head>
<meta charset="utf-8">
<title>{{ paper.Title }}</title>
<style>
  :root { color-scheme: light; }
  html[data-theme="dark"] { color-scheme: dark; }
  html[data-theme="dark"] body { background: #1a1a2e; color: #eaeaea; }
  body { background: #ffffff; color: #1f2430; font-family: Georgia, serif; margin: 0; padding: 32px; max-width: 900px; }
  header { border-bottom: 2px solid #c9c9d9; padding-bottom: 16px; margin-bottom: 24px; }
  h1 { font-size: 28px; margin: 0 0 8px; }
  .authors { font-style: italic; color: #666; }
  section { margin-bottom: 28px; }
  h2 { font-size: 20px; border-left: 4px solid #7c6fd0; padding-left: 10px; }
  .big-idea { font-size: 18px; background: #f3f1fb; padding: 16px; border-radius: 8px; }
  html[data-theme="dark"] .big-idea { background: #2a2a44; }
  .step { display: flex; gap: 16px; margin-bottom: 18px; align-items: flex-start; }
  .step-number { font-weight: bold; color: #7c6fd0; min-width: 24px; }
  .step img { width: 220px; border-radius: 8px; }
  .placeholder { width: 220px; height: 160px; border: 2px dashed #b8b3d8; border-radius: 8px;
                 display: flex; align-items: center; justify-content: center;
                 color: #8a86a8; font-size: 13px; text-align: center; padding: 8px; }
  dl dt { font-weight: bold; }
  dl dd { margin: 0 0 8px 0; }
  .flags li { color: #9a6700; }
</style>
</head>
<body>
<header>
  <h1>{{ paper.Title }}</h1>
  <p class="authors">{{ paper.Authors|join:", " }}</p>
  <p class="topic">Course topic: {{ paper.Topic }}</p>
</header>

<section class="big-idea">
  <h2>The Big Idea</h2>
  <p>{{ summary.BigIdea }}</p>
</section>

{% if steps %}
<section>
  <h2>How It Works</h2>
  {% for step in steps %}
  <div class="step">
    <span class="step-number">{{ step.Number }}.</span>
    <div>
      <p>{{ step.Text }}</p>
      {% if step.Image %}
        {% if step.Image.URL %}
          <img src="{{ step.Image.URL }}" alt="{{ step.Image.Description }}">
        {% else %}
          <div class="placeholder">{{ step.Image.KeyPoint }}</div>
        {% endif %}
      {% endif %}
    </div>
  </div>
  {% endfor %}
</section>
{% endif %}

{% if summary.Example %}
<section>
  <h2>For Example</h2>
  <p>{{ summary.Example }}</p>
</section>
{% endif %}

{% if summary.WhyItMatters %}
<section>
  <h2>Why It Matters</h2>
  <p>{{ summary.WhyItMatters }}</p>
</section>
{% endif %}

{% if summary.Limitations %}
<section>
  <h2>What Doesn't Work Yet</h2>
  <p>{{ summary.Limitations }}</p>
</section>
{% endif %}

{% if summary.Glossary %}
<section>
  <h2>Word List</h2>
  <dl>
  {% for entry in summary.Glossary %}
    <dt>{{ entry.Term }}</dt>
    <dd>{{ entry.Definition }}</dd>
  {% endfor %}
  </dl>
</section>
{% endif %}

{% if summary.ForClass.Prerequisites or summary.ForClass.Connections or summary.ForClass.DiscussionQuestions %}
<section>
  <h2>For Class</h2>
  {% if summary.ForClass.Prerequisites %}
  <h3>You should already know</h3>
  <ul>{% for item in summary.ForClass.Prerequisites %}<li>{{ item }}</li>{% endfor %}</ul>
  {% endif %}
  {% if summary.ForClass.Connections %}
  <h3>Connects to</h3>
  <ul>{% for item in summary.ForClass.Connections %}<li>{{ item }}</li>{% endfor %}</ul>
  {% endif %}
  {% if summary.ForClass.DiscussionQuestions %}
  <h3>Talk about</h3>
  <ul>{% for item in summary.ForClass.DiscussionQuestions %}<li>{{ item }}</li>{% endfor %}</ul>
  {% endif %}
</section>
{% endif %}

{% if summary.AccuracyFlags %}
<section>
  <h2>Careful!</h2>
  <ul class="flags">{% for flag in summary.AccuracyFlags %}<li>{{ flag }}</li>{% endfor %}</ul>
</section>
{% endif %}
</body>
</html>
`))
