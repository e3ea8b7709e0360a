package doctor

import (
	"fmt"
	"os/exec"
)

// Check is the result of one environment probe.
type Check struct {
	Name   string
	OK     bool
	Detail string
	Hint   string
}

// DockerClient is the part of the docker wrapper the probes need.
type DockerClient interface {
	Installed() bool
	DaemonRunning() bool
	ImagePresent(ref string) bool
}

// Doctor probes the host for everything the pipeline needs: docker and
// its daemon, the pipeline image, and the tools the download and deploy
// paths shell out to.
type Doctor struct {
	docker   DockerClient
	imageRef string
}

// New creates a Doctor checking for imageRef.
func New(docker DockerClient, imageRef string) *Doctor {
	return &Doctor{docker: docker, imageRef: imageRef}
}

// RunChecks runs every probe and returns the results in display order.
func (d *Doctor) RunChecks() []Check {
	checks := []Check{
		d.checkDockerBinary(),
		d.checkDockerDaemon(),
		d.checkImage(),
		checkBinary("git", "required to mirror the language model repositories",
			"install git from https://git-scm.com"),
		checkBinary("git-lfs", "required to download large model files",
			"install Git LFS from https://git-lfs.com and run 'git lfs install'"),
		checkBinary("python3", "required to drive the pipeline in serve mode",
			"install Python 3"),
		checkBinary("gcloud", "required by 'biom3 deploy'",
			"install the Google Cloud SDK from https://cloud.google.com/sdk"),
	}
	return checks
}

// Healthy reports whether every check passed.
func Healthy(checks []Check) bool {
	for _, check := range checks {
		if !check.OK {
			return false
		}
	}
	return true
}

func (d *Doctor) checkDockerBinary() Check {
	check := Check{Name: "docker", Detail: "runs the pipeline container"}
	if d.docker.Installed() {
		check.OK = true
	} else {
		check.Hint = "install Docker from https://docs.docker.com/get-docker/"
	}
	return check
}

func (d *Doctor) checkDockerDaemon() Check {
	check := Check{Name: "docker daemon"}
	if !d.docker.Installed() {
		check.Detail = "docker is not installed"
		check.Hint = "install Docker first"
		return check
	}

	if d.docker.DaemonRunning() {
		check.OK = true
		check.Detail = "daemon is responding"
	} else {
		check.Detail = "daemon did not respond"
		check.Hint = "start the Docker service and retry"
	}
	return check
}

func (d *Doctor) checkImage() Check {
	check := Check{Name: "pipeline image", Detail: d.imageRef}
	if !d.docker.Installed() || !d.docker.DaemonRunning() {
		check.Hint = "install and start Docker first"
		return check
	}

	if d.docker.ImagePresent(d.imageRef) {
		check.OK = true
	} else {
		check.Hint = fmt.Sprintf("run 'biom3 setup' or 'docker pull %s'", d.imageRef)
	}
	return check
}

func checkBinary(name, detail, hint string) Check {
	check := Check{Name: name, Detail: detail}
	if _, err := exec.LookPath(name); err == nil {
		check.OK = true
	} else {
		check.Hint = hint
	}
	return check
}
