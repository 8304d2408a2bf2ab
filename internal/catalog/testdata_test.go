package catalog

const demoEntityYAML = `apiVersion: backstage.io/v1alpha1
kind: Component
metadata:
  name: demo
  annotations:
    backstage.io/gerrit-project: demo
spec:
  stages:
    - type: jenkins
      name: build
      host: https://jenkins.example.com
    - type: spinnaker
      name: deploy
      host: https://spinnaker.example.com
`

const noStagesEntityYAML = `apiVersion: backstage.io/v1alpha1
kind: Component
metadata:
  name: docs
  namespace: platform
`

const systemEntityYAML = `apiVersion: backstage.io/v1alpha1
kind: System
metadata:
  name: payments
spec:
  stages:
    - type: gerrit
      name: verify
`
