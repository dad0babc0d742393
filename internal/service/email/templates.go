package email

// Every template renders "layout", which pulls in the template's own
// "content" block.

const layoutTemplate = `{{define "layout"}}<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: Georgia, 'Times New Roman', serif; line-height: 1.6; color: #1f2937; max-width: 600px; margin: 0 auto; padding: 20px; }
        .content { background: #ffffff; padding: 24px; border: 1px solid #e5e7eb; border-radius: 8px; }
        .info-box { background: #f3f4f6; padding: 16px; border-radius: 8px; margin: 16px 0; }
        .info-row { padding: 4px 0; }
        .info-label { color: #6b7280; }
        .footer { padding: 12px; text-align: center; font-size: 12px; color: #9ca3af; }
    </style>
</head>
<body>
    <div class="content">
        {{template "content" .}}
    </div>
    <div class="footer">
        <p>Sent on behalf of {{.FromName}}.</p>
    </div>
</body>
</html>{{end}}`

const messageTemplate = `{{define "content"}}
        {{range .Paragraphs}}<p>{{.}}</p>
        {{end}}
{{end}}`

const eventInvitationTemplate = `{{define "content"}}
        <h2>{{.Title}}</h2>
        <p>You are invited to the following event.</p>
        <div class="info-box">
            <div class="info-row"><span class="info-label">When:</span> {{.StartsAt}} to {{.EndsAt}}</div>
            {{if .Location}}<div class="info-row"><span class="info-label">Where:</span> {{.Location}}</div>{{end}}
        </div>
{{end}}`
