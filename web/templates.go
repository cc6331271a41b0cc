package web

import "html/template"

// One dark monospace page shell for every response. Content is injected as
// a parsed sub-template, never as raw strings.
const pageShell = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Confidential Auth</title>
    <style>
        body { font-family: monospace; max-width: 800px; margin: 50px auto; padding: 20px; background: #0a0a0a; color: #e0e0e0; }
        .container { border: 2px solid #0070ba; padding: 30px; border-radius: 10px; background: #1a1a1a; }
        .btn { background: #0070ba; color: white; padding: 15px 30px; text-decoration: none;
               border-radius: 5px; display: inline-block; font-size: 16px; border: none; cursor: pointer; }
        .btn:hover { background: #005a94; }
        .info { background: #2a2a2a; padding: 15px; margin: 20px 0; border-radius: 5px; border-left: 4px solid #0070ba; }
        .attestation { background: #1a3a1a; padding: 15px; margin: 20px 0; border-radius: 5px;
                       word-break: break-all; font-size: 11px; border-left: 4px solid #4caf50; }
        .error { background: #3a1a1a; padding: 15px; margin: 20px 0; border-radius: 5px; color: #ff6b6b; border-left: 4px solid #c62828; }
        pre { background: #0a0a0a; padding: 10px; border-radius: 3px; overflow-x: auto; font-size: 10px; }
        h1 { color: #0070ba; }
        h3 { color: #64b5f6; }
        ul { list-style: none; padding-left: 0; }
        li { padding: 5px 0; }
    </style>
</head>
<body>
    <div class="container">
        {{block "content" .}}{{end}}
    </div>
</body>
</html>`

const indexContent = `{{define "content"}}
<h1>Confidential Authentication</h1>
<div class="info">
    <p><strong>Status:</strong> system operational</p>
    <p><strong>Domain:</strong> {{.Domain}}</p>
    <p><strong>Certificate:</strong> RAM only, obtained fresh at boot</p>
</div>
<div class="info">
    <p><strong>Security architecture:</strong></p>
    <ul>
        <li>Application runs from a measured initramfs</li>
        <li>AMD SEV-SNP confidential computing</li>
        <li>TLS key material never touches durable storage</li>
        <li>All session state in RAM only</li>
    </ul>
</div>
<p>This system provides cryptographic proof of its integrity through attestation reports.</p>
<a href="/login" class="btn">Login</a>
{{end}}`

const successContent = `{{define "content"}}
<h1>Authentication Successful</h1>
<div class="info">
    <h3>User Information</h3>
    <p><strong>User ID:</strong> {{.UserID}}</p>
    <p><strong>Name:</strong> {{.Name}}</p>
    <p><strong>Email:</strong> {{.Email}}</p>
    <p><strong>Email Verified:</strong> {{.EmailVerified}}</p>
</div>
<div class="attestation">
    <h3>Cryptographic Attestation</h3>
    <p><strong>Provider:</strong> {{.AttestationKind}}</p>
    <p><em>REPORT_DATA binds the hash of the client ID and user ID</em></p>
    <pre>{{.Attestation}}</pre>
</div>
<a href="/" class="btn">Back to Home</a>
{{end}}`

const errorContent = `{{define "content"}}
<div class="error">
    <h2>{{.Title}}</h2>
    <p>{{.Detail}}</p>
</div>
<a href="/" class="btn">Back to Home</a>
{{end}}`

var (
	indexTmpl   = template.Must(template.Must(template.New("page").Parse(pageShell)).Parse(indexContent))
	successTmpl = template.Must(template.Must(template.New("page").Parse(pageShell)).Parse(successContent))
	errorTmpl   = template.Must(template.Must(template.New("page").Parse(pageShell)).Parse(errorContent))
)
