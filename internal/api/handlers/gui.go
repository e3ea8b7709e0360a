package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// GUI serves the browser front end. The full page ships as a standalone
// HTML file next to the binary; when it is missing a compact embedded
// page keeps the route usable.
func (h *Handlers) GUI(c *gin.Context) {
	if data, err := os.ReadFile(h.guiPath); err == nil {
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(fallbackGUI))
}

const fallbackGUI = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>BioM3 - Protein Generation &amp; Structure Prediction</title>
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); min-height: 100vh; color: #333; }
        .container { max-width: 800px; margin: 0 auto; padding: 20px; }
        .header { text-align: center; color: #fff; padding: 20px; }
        .card { background: rgba(255, 255, 255, 0.95); border-radius: 15px; padding: 30px; margin-bottom: 20px; }
        label { display: block; margin: 12px 0 6px; font-weight: 600; color: #2c3e50; }
        textarea, input { width: 100%; padding: 10px; border: 2px solid #e0e0e0; border-radius: 8px; font-size: 14px; box-sizing: border-box; }
        button { padding: 10px 20px; margin: 12px 8px 0 0; background: #3498db; color: #fff; border: none; border-radius: 8px; cursor: pointer; }
        button:hover { background: #2980b9; }
        #status { margin-top: 12px; font-weight: 600; }
        pre { background: #2c3e50; color: #ecf0f1; padding: 15px; border-radius: 8px; overflow-x: auto; white-space: pre-wrap; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>BioM3</h1>
            <p>Protein Generation &amp; Structure Prediction Pipeline</p>
        </div>
        <div class="card">
            <label for="prompt">Protein Description Prompt:</label>
            <textarea id="prompt" rows="4">Generate a protein that can bind to DNA and regulate gene expression</textarea>
            <label for="diffusionSteps">Diffusion Steps:</label>
            <input type="number" id="diffusionSteps" value="1024" min="1">
            <label for="numReplicas">Number of Replicas:</label>
            <input type="number" id="numReplicas" value="5" min="1">
            <button onclick="generateProtein()">Generate Protein</button>
            <button onclick="checkHealth()">Check Health</button>
            <button onclick="getInfo()">Service Info</button>
            <div id="status"></div>
        </div>
        <div class="card">
            <h2>Results</h2>
            <pre id="output">Results will appear here after processing...</pre>
        </div>
    </div>
    <script>
        function show(message) {
            document.getElementById('status').textContent = message;
        }

        function output(data) {
            document.getElementById('output').textContent = JSON.stringify(data, null, 2);
        }

        async function checkHealth() {
            try {
                const response = await fetch('/health');
                output(await response.json());
                show(response.ok ? 'Service is healthy' : 'Health check failed');
            } catch (error) {
                show('Error: ' + error.message);
            }
        }

        async function getInfo() {
            try {
                const response = await fetch('/info');
                output(await response.json());
                show('');
            } catch (error) {
                show('Error: ' + error.message);
            }
        }

        async function generateProtein() {
            const prompt = document.getElementById('prompt').value.trim();
            if (!prompt) {
                show('Please enter a protein description');
                return;
            }

            show('Generating protein... This may take several minutes.');
            try {
                const response = await fetch('/predict', {
                    method: 'POST',
                    headers: { 'Content-Type': 'application/json' },
                    body: JSON.stringify({
                        prompts: [prompt],
                        config: {
                            diffusion_steps: parseInt(document.getElementById('diffusionSteps').value),
                            num_replicas: parseInt(document.getElementById('numReplicas').value)
                        }
                    })
                });
                const data = await response.json();
                output(data);
                show(response.ok ? 'Protein generation completed' : 'Generation failed: ' + (data.error || 'unknown error'));
            } catch (error) {
                show('Error: ' + error.message);
            }
        }
    </script>
</body>
</html>
`
