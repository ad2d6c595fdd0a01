package login

// Static pages shown to the browser once the redirect lands. The success
// page takes the account email as its only format argument.

const successPage = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<title>Login Successful</title>
	<style>
		body { font-family: -apple-system, BlinkMacSystemFont, sans-serif; max-width: 600px; margin: 50px auto; padding: 20px; background: #1a1a2e; color: #eee; text-align: center; }
		.success { color: #4ade80; font-size: 24px; margin-bottom: 10px; }
		.hint { color: #9ca3af; margin-top: 30px; }
	</style>
</head>
<body>
	<div class="success">&#10003; Login Successful</div>
	<p>Account <strong>%s</strong> is now connected.</p>
	<p class="hint">You can close this window and return to the editor.</p>
</body>
</html>`

const failurePage = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<title>Login Failed</title>
	<style>
		body { font-family: -apple-system, BlinkMacSystemFont, sans-serif; max-width: 600px; margin: 50px auto; padding: 20px; background: #1a1a2e; color: #eee; text-align: center; }
		.failure { color: #f87171; font-size: 24px; margin-bottom: 10px; }
		.hint { color: #9ca3af; margin-top: 30px; }
	</style>
</head>
<body>
	<div class="failure">&#10007; Login Failed</div>
	<p>The sign-in attempt could not be completed.</p>
	<p class="hint">Close this window and try again from the editor.</p>
</body>
</html>`
